package core

import "testing"

func TestControllerStoppedIdempotent(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	if err := a.SetPosition(250); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}

	before := a.Snapshot()
	calls := r.timer.calls()
	for i := 0; i < 10; i++ {
		a.OnControllerTick()
	}

	if a.Snapshot() != before {
		t.Errorf("Expected no state change, got %+v (was %+v)", a.Snapshot(), before)
	}
	if r.timer.calls() != calls {
		t.Errorf("Expected no hardware calls, got %d", r.timer.calls()-calls)
	}
	if r.pin.sets != 0 {
		t.Errorf("Expected no direction writes, got %d", r.pin.sets)
	}
}

func TestControllerBeginsMove(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	a.ctrlPrescalerTicks = 1
	a.SetTarget(100)

	a.OnControllerTick()

	if a.Status() != Starting() {
		t.Errorf("Expected starting, got %s", a.Status())
	}
	if r.timer.updates != 1 || r.timer.starts != 1 {
		t.Errorf("Expected one forced update and one start, got updates=%d starts=%d",
			r.timer.updates, r.timer.starts)
	}
	if a.ctrlPrescalerTicks != a.ctrlPrescaler {
		t.Errorf("Expected countdown reset to %d, got %d", a.ctrlPrescaler, a.ctrlPrescalerTicks)
	}

	// Starting waits for the pulse handler
	a.OnControllerTick()
	a.OnControllerTick()
	if a.Status() != Starting() || r.timer.starts != 1 || a.ctrlPrescalerTicks != a.ctrlPrescaler {
		t.Errorf("Starting must be a no-op, got %s starts=%d ticks=%d", a.Status(), r.timer.starts, a.ctrlPrescalerTicks)
	}
}

func TestControllerAcceleratesOncePerSubPeriod(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	a.status = Running(false, ModNone)
	a.target = 1000000

	for i := 1; i <= 3; i++ {
		a.OnControllerTick()
		if a.SPS() != 150 {
			t.Fatalf("tick %d: expected no speed change before countdown expires, got %d", i, a.SPS())
		}
	}
	a.OnControllerTick()
	if a.SPS() != 300 {
		t.Errorf("Expected acceleration to 300 on 4th tick, got %d", a.SPS())
	}
	if a.ctrlPrescalerTicks != 4 {
		t.Errorf("Expected countdown refilled to 4, got %d", a.ctrlPrescalerTicks)
	}
	if r.timer.sps != 300 {
		t.Errorf("Expected timer reprogrammed to 300, got %d", r.timer.sps)
	}
}

func TestControllerBrakeDecisionSameTick(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	a.status = Running(false, ModBreakCorrection)
	a.sps = 1650
	a.position = 100
	a.target = 105

	a.OnControllerTick()

	if !a.Status().Breaking() || a.Status().BreakCorrection() {
		t.Fatalf("Expected Breaking with correction cleared, got %s", a.Status())
	}
	if a.breakInitiationSPS != 1650 {
		t.Errorf("Expected breakInitiationSPS 1650, got %d", a.breakInitiationSPS)
	}
	if a.SPS() != 1500 {
		t.Errorf("Expected first deceleration step to 1500, got %d", a.SPS())
	}
	if a.ctrlPrescalerTicks != 3 {
		t.Errorf("Expected countdown left at 3, got %d", a.ctrlPrescalerTicks)
	}
}

func TestControllerBrakeDecisionRefillsExpiredCountdown(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	a.status = Running(true, ModNone)
	a.sps = 3000
	a.position = 0
	a.target = -10
	a.ctrlPrescalerTicks = 1

	a.OnControllerTick()

	if !a.Status().Breaking() || a.SPS() != 2850 {
		t.Fatalf("Expected braking at 2850, got %s at %d", a.Status(), a.SPS())
	}
	if a.ctrlPrescalerTicks != a.ctrlPrescaler {
		t.Errorf("Expected countdown refilled to %d, got %d", a.ctrlPrescaler, a.ctrlPrescalerTicks)
	}
}

func TestControllerBreakCorrection(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	start := a.minSPS + 100*a.accelSPS
	a.status = Running(false, ModBreaking)
	a.sps = start
	a.breakInitiationSPS = start
	a.target = 1000000

	ticks := 0
	for !a.Status().BreakCorrection() && ticks < 10000 {
		a.OnControllerTick()
		ticks++
		if a.Status().Breaking() && a.Status().BreakCorrection() {
			t.Fatal("Breaking and BreakCorrection set together")
		}
	}

	if !a.Status().BreakCorrection() {
		t.Fatalf("Expected BreakCorrection after %d ticks, got %s", ticks, a.Status())
	}
	if a.Status().Breaking() {
		t.Error("Expected Breaking cleared")
	}
	// relaxed with 49 increments left, then stepped down once more
	expected := a.minSPS + 48*a.accelSPS
	if a.SPS() != expected {
		t.Errorf("Expected sps %d after correction, got %d", expected, a.SPS())
	}
	if ticks != 52*int(a.ctrlPrescaler) {
		t.Errorf("Expected correction on tick %d, got %d", 52*int(a.ctrlPrescaler), ticks)
	}

	// coasting: no speed change
	for i := 0; i < 20; i++ {
		a.OnControllerTick()
	}
	if a.SPS() != expected || !a.Status().BreakCorrection() {
		t.Errorf("Expected coasting at %d, got %s at %d", expected, a.Status(), a.SPS())
	}
}

func TestControllerNoCorrectionNearMinimum(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	start := a.minSPS + 20*a.accelSPS
	a.status = Running(false, ModBreaking)
	a.sps = start
	a.breakInitiationSPS = start
	a.target = 1000000

	for i := 0; i < 200; i++ {
		a.OnControllerTick()
		if a.Status().BreakCorrection() {
			t.Fatalf("tick %d: correction must need more than 10 increments left (sps %d)", i, a.SPS())
		}
	}
	if a.SPS() != a.minSPS {
		t.Errorf("Expected full deceleration to %d, got %d", a.minSPS, a.SPS())
	}
}

func TestDecelerationPointBeforeTarget(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis
	a.status = Running(false, ModNone)
	a.sps = a.minSPS + a.accelSPS
	a.target = 1000
	a.timer.Start()

	brakeAt := int32(-1)
	n := r.interleave(100000, func(a *Axis) {
		if brakeAt < 0 && a.Status().Breaking() {
			brakeAt = a.Position()
		}
		if a.SPS() < a.minSPS || a.SPS() > a.maxSPS {
			t.Fatalf("sps %d out of bounds", a.SPS())
		}
	})

	if n < 0 {
		t.Fatalf("Move did not finish, state %+v", a.Snapshot())
	}
	if brakeAt < 0 || brakeAt >= 1000 {
		t.Errorf("Expected Breaking before the target, first seen at %d", brakeAt)
	}
	for _, an := range r.anomalies {
		if an.Kind == AnomalyOvershoot {
			t.Errorf("Unexpected overshoot: %+v", an)
		}
	}
	if a.Position() != 1000 || a.SPS() != a.minSPS {
		t.Errorf("Expected stop at 1000 at minSPS, got %d at %d", a.Position(), a.SPS())
	}
	if r.timer.stops != 1 {
		t.Errorf("Expected a single hardware stop, got %d", r.timer.stops)
	}
}

func TestTrapezoidScenario(t *testing.T) {
	for _, target := range []int32{1000, -1000, 20, -20} {
		r := newTestRig(t, DefaultAxisConfig("x"))
		a := r.axis
		a.SetTarget(target)

		peak := uint32(0)
		n := r.interleave(100000, func(a *Axis) {
			if a.SPS() > peak {
				peak = a.SPS()
			}
		})

		if n < 0 {
			t.Fatalf("target %d: move did not finish, state %+v", target, a.Snapshot())
		}
		if a.Position() != target || a.SPS() != a.minSPS {
			t.Errorf("target %d: expected stop on target at minSPS, got %d at %d", target, a.Position(), a.SPS())
		}
		if r.timer.stops != 1 {
			t.Errorf("target %d: expected one stop, got %d", target, r.timer.stops)
		}
		if peak <= a.minSPS {
			t.Errorf("target %d: expected acceleration above minSPS, peak %d", target, peak)
		}
	}
}
