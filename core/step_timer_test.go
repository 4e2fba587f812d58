package core

import (
	"math"
	"testing"
)

func TestTimerRegisters(t *testing.T) {
	tests := []struct {
		clock, sps uint32
		psc, arr   uint32
	}{
		{72000000, 400000, 0, 180},
		{72000000, 150, 7, 60000},
		{72000000, 1099, 0, 65514},
		{72000000, 1098, 1, 32786},
		{65535, 1, 0, 65535},
		{65536, 1, 1, 32768},
		{131070, 1, 1, 65535},
		{131071, 1, 2, 43690},
	}

	for _, test := range tests {
		psc, arr := TimerRegisters(test.clock, test.sps)
		if psc != test.psc || arr != test.arr {
			t.Errorf("TimerRegisters(%d, %d) = (%d, %d), expected (%d, %d)",
				test.clock, test.sps, psc, arr, test.psc, test.arr)
		}
		if arr > MaxReload {
			t.Errorf("TimerRegisters(%d, %d): reload %d exceeds 16 bits", test.clock, test.sps, arr)
		}
	}
}

func TestTimerRegistersRoundTrip(t *testing.T) {
	const clock = DefaultTimerClock

	for _, sps := range []uint32{150, 151, 300, 999, 1100, 4500, 15150, 65535, 100000, 250000, 399850, 400000} {
		psc, arr := TimerRegisters(clock, sps)
		got := RegisterRate(clock, psc, arr)

		// truncation can only shorten the period, and by less than one
		// counter tick at each of the two divisions
		period := float64(psc+1) * float64(arr)
		rel := (got - float64(sps)) / float64(sps)
		tolerance := 1.0/float64(arr) + 1.0/period
		if rel < 0 || rel > tolerance {
			t.Errorf("sps=%d: psc=%d arr=%d gives %.3f (rel err %.6f, tolerance %.6f)",
				sps, psc, arr, got, rel, tolerance)
		}
	}
}

func TestRegisterRateZeroReload(t *testing.T) {
	if r := RegisterRate(1000, 0, 0); r != 0 {
		t.Errorf("Expected 0 for zero reload, got %f", r)
	}
}

// fakeCounter records register writes
type fakeCounter struct {
	psc, arr  uint32
	running   bool
	updates   int
	preloaded bool
}

func (c *fakeCounter) SetPrescaler(psc uint32) { c.psc = psc }
func (c *fakeCounter) SetReload(arr uint32)    { c.arr = arr }
func (c *fakeCounter) Start()                  { c.running = true }
func (c *fakeCounter) Stop()                   { c.running = false }
func (c *fakeCounter) GenerateUpdate()         { c.updates++ }
func (c *fakeCounter) EnablePreload()          { c.preloaded = true }

func TestRegisterTimer(t *testing.T) {
	counter := &fakeCounter{}
	timer := NewRegisterTimer(counter, DefaultTimerClock)

	timer.SetStepFrequency(150)
	if counter.psc != 7 || counter.arr != 60000 {
		t.Errorf("Expected psc=7 arr=60000, got psc=%d arr=%d", counter.psc, counter.arr)
	}
	if psc, arr := timer.Registers(); psc != 7 || arr != 60000 {
		t.Errorf("Registers() = (%d, %d), expected (7, 60000)", psc, arr)
	}

	timer.ForceUpdate()
	timer.Start()
	if !counter.running || counter.updates != 1 {
		t.Errorf("Expected running counter with 1 update, got running=%v updates=%d", counter.running, counter.updates)
	}
	timer.Stop()
	if counter.running {
		t.Error("Counter still running after Stop")
	}
}

func TestNewAxisEnablesPreloadThroughRegisterTimer(t *testing.T) {
	counter := &fakeCounter{}
	_, err := NewAxis(DefaultAxisConfig("x"), Hardware{
		Timer:     NewRegisterTimer(counter, DefaultTimerClock),
		Direction: &fakePin{},
	})
	if err != nil {
		t.Fatalf("NewAxis failed: %v", err)
	}
	if !counter.preloaded {
		t.Error("Expected reload preload to be enabled at init")
	}
	if counter.psc != 7 || counter.arr != 60000 {
		t.Errorf("Expected initial rate programmed at minSPS, got psc=%d arr=%d", counter.psc, counter.arr)
	}
}

func TestAccelerateDecelerateStayInBounds(t *testing.T) {
	// 400000 is not a multiple of the 150 increment
	r := newTestRig(t, DefaultAxisConfig("x"))
	a := r.axis

	for i := 0; i < 3000; i++ {
		a.accelerate()
		if a.sps < a.minSPS || a.sps > a.maxSPS {
			t.Fatalf("accelerate #%d: sps %d outside [%d, %d]", i, a.sps, a.minSPS, a.maxSPS)
		}
	}
	if a.sps != a.maxSPS {
		t.Errorf("Expected sps clamped at %d, got %d", a.maxSPS, a.sps)
	}

	before := len(r.timer.rates)
	a.accelerate()
	if len(r.timer.rates) != before {
		t.Error("accelerate at maxSPS must not reprogram the timer")
	}

	for i := 0; i < 3000; i++ {
		a.decelerate()
		if a.sps < a.minSPS || a.sps > a.maxSPS {
			t.Fatalf("decelerate #%d: sps %d outside [%d, %d]", i, a.sps, a.minSPS, a.maxSPS)
		}
	}
	if a.sps != a.minSPS {
		t.Errorf("Expected sps clamped at %d, got %d", a.minSPS, a.sps)
	}

	before = len(r.timer.rates)
	a.decelerate()
	if len(r.timer.rates) != before {
		t.Error("decelerate at minSPS must not reprogram the timer")
	}
}

func TestAccelerateProgramsTimer(t *testing.T) {
	r := newTestRig(t, DefaultAxisConfig("x"))

	r.axis.accelerate()
	if r.axis.sps != 300 || r.timer.sps != 300 {
		t.Errorf("Expected sps 300 on axis and timer, got %d and %d", r.axis.sps, r.timer.sps)
	}
	r.axis.decelerate()
	if r.axis.sps != 150 || r.timer.sps != 150 {
		t.Errorf("Expected sps 150 on axis and timer, got %d and %d", r.axis.sps, r.timer.sps)
	}
}

func TestRegistersFit(t *testing.T) {
	if registersFit(1000, 0) {
		t.Error("0 sps must not fit")
	}
	if registersFit(1000, 2000) {
		t.Error("rate above clock must not fit (zero reload)")
	}
	if registersFit(math.MaxUint32, 1) {
		t.Error("prescaler above 16 bits must not fit")
	}
	if !registersFit(DefaultTimerClock, DefaultMaxSPS) || !registersFit(DefaultTimerClock, DefaultMinSPS) {
		t.Error("default range must fit")
	}
}
