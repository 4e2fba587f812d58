package core

import "testing"

// fakeTimer records PulseTimer calls
type fakeTimer struct {
	sps     uint32
	running bool
	starts  int
	stops   int
	updates int
	rates   []uint32
	preload bool
}

func (f *fakeTimer) SetStepFrequency(sps uint32) {
	f.sps = sps
	f.rates = append(f.rates, sps)
}

func (f *fakeTimer) Start() {
	f.running = true
	f.starts++
}

func (f *fakeTimer) Stop() {
	f.running = false
	f.stops++
}

func (f *fakeTimer) ForceUpdate() { f.updates++ }

func (f *fakeTimer) EnablePreload() { f.preload = true }

func (f *fakeTimer) calls() int {
	return f.starts + f.stops + f.updates + len(f.rates)
}

// fakePin records direction levels
type fakePin struct {
	level bool
	sets  int
}

func (p *fakePin) Set(high bool) {
	p.level = high
	p.sets++
}

// recordingWriter keeps each WriteString call separately
type recordingWriter struct {
	writes []string
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.writes = append(w.writes, s)
	return len(s), nil
}

type testRig struct {
	axis      *Axis
	timer     *fakeTimer
	pin       *fakePin
	telemetry *recordingWriter
	anomalies []Anomaly
	periodUS  uint64
}

func newTestRig(t *testing.T, cfg AxisConfig) *testRig {
	t.Helper()
	r := &testRig{
		timer:     &fakeTimer{},
		pin:       &fakePin{},
		telemetry: &recordingWriter{},
		periodUS:  uint64(cfg.ControllerPeriodUS),
	}
	a, err := NewAxis(cfg, Hardware{
		Timer:     r.timer,
		Direction: r.pin,
		Telemetry: r.telemetry,
		OnAnomaly: func(an Anomaly) { r.anomalies = append(r.anomalies, an) },
	})
	if err != nil {
		t.Fatalf("NewAxis failed: %v", err)
	}
	r.axis = a
	return r
}

// interleave plays the two interrupt sources: each controller tick is
// followed by as many pulses as the current rate emits in one controller
// period. observe runs after every pulse. Returns the number of ticks
// until the axis rests on target, or -1.
func (r *testRig) interleave(maxTicks int, observe func(*Axis)) int {
	a := r.axis
	var owed uint64 // step-microseconds
	for i := 0; i < maxTicks; i++ {
		a.OnControllerTick()
		if r.timer.running {
			owed += uint64(a.sps) * r.periodUS
			for owed >= 1000000 && r.timer.running {
				owed -= 1000000
				a.OnPulse()
				if observe != nil {
					observe(a)
				}
			}
		}
		if a.status.State() == StateStopped && a.position == a.target && !r.timer.running {
			return i + 1
		}
	}
	return -1
}
