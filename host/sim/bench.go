package sim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stepctl/core"
)

// ErrTimeout is returned by Run when the axis has not come to rest on its
// target within the time limit
var ErrTimeout = errors.New("sim: move did not finish")

// Sample is passed to Bench.Trace after every controller tick
type Sample struct {
	Time     time.Duration
	Snapshot core.Snapshot
}

// Result summarizes the bench after a Run. Elapsed covers that Run only;
// the counts, anomalies and telemetry accumulate from NewBench.
type Result struct {
	Position  int32
	Target    int32
	SPS       uint32
	PeakSPS   uint32
	Pulses    int
	Stops     int
	Elapsed   time.Duration
	Anomalies []core.Anomaly
	Telemetry string
}

// Bench runs one axis against a simulated counter and direction pin.
// The controller tick and the counter overflow are two timers on one
// core.Scheduler timeline measured in counter input clock ticks, so the
// two handlers interleave exactly as on hardware and never overlap.
type Bench struct {
	cfg     core.AxisConfig
	axis    *core.Axis
	counter *Counter
	dir     *Pin
	sched   *core.Scheduler

	controller core.Timer
	pulse      core.Timer
	ctrlPeriod uint64

	telemetry strings.Builder
	anomalies []core.Anomaly
	pulses    int
	peak      uint32

	// Trace, when set, receives a sample after every controller tick
	Trace func(Sample)
}

// NewBench builds an axis from cfg on simulated hardware
func NewBench(cfg core.AxisConfig) (*Bench, error) {
	b := &Bench{
		cfg:     cfg,
		counter: &Counter{},
		dir:     &Pin{},
		sched:   core.NewScheduler(),
	}

	report := core.TelemetryAnomalyHandler(&b.telemetry)
	axis, err := core.NewAxis(cfg, core.Hardware{
		Timer:     core.NewRegisterTimer(b.counter, cfg.TimerClock),
		Direction: b.dir,
		Telemetry: &b.telemetry,
		OnAnomaly: func(an core.Anomaly) {
			b.anomalies = append(b.anomalies, an)
			report(an)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	b.axis = axis
	b.peak = axis.SPS()

	b.ctrlPeriod = uint64(cfg.ControllerPeriodUS) * uint64(cfg.TimerClock) / 1000000
	if b.ctrlPeriod == 0 {
		b.ctrlPeriod = 1
	}
	b.controller.Handler = b.controllerEvent
	b.controller.WakeTime = b.ctrlPeriod
	b.sched.Schedule(&b.controller)
	b.pulse.Handler = b.pulseEvent

	return b, nil
}

// Axis returns the simulated axis
func (b *Bench) Axis() *core.Axis {
	return b.axis
}

// Counter returns the simulated pulse counter
func (b *Bench) Counter() *Counter {
	return b.counter
}

// Direction returns the simulated direction pin
func (b *Bench) Direction() *Pin {
	return b.dir
}

// MoveTo sets a new target; the next controller tick picks it up
func (b *Bench) MoveTo(target int32) {
	b.axis.SetTarget(target)
}

// Now returns the simulated time
func (b *Bench) Now() time.Duration {
	return b.ticksToDuration(b.sched.Now())
}

func (b *Bench) ticksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks*1000000/uint64(b.cfg.TimerClock)) * time.Microsecond
}

func (b *Bench) controllerEvent(t *core.Timer) uint8 {
	core.Critical(b.axis.OnControllerTick)

	if b.counter.Running() && !b.sched.Scheduled(&b.pulse) {
		b.pulse.WakeTime = t.WakeTime + b.counter.Period()
		b.sched.Schedule(&b.pulse)
	}
	if b.Trace != nil {
		b.Trace(Sample{Time: b.ticksToDuration(t.WakeTime), Snapshot: b.axis.Snapshot()})
	}

	t.WakeTime += b.ctrlPeriod
	return core.SF_RESCHEDULE
}

func (b *Bench) pulseEvent(t *core.Timer) uint8 {
	if !b.counter.Running() {
		return core.SF_DONE
	}
	b.counter.overflow()
	b.pulses++
	core.Critical(b.axis.OnPulse)
	if sps := b.axis.SPS(); sps > b.peak {
		b.peak = sps
	}

	if !b.counter.Running() {
		return core.SF_DONE
	}
	t.WakeTime += b.counter.Period()
	return core.SF_RESCHEDULE
}

func (b *Bench) atRest() bool {
	a := b.axis
	return a.Status() == core.Stopped() && a.Position() == a.Target() && !b.counter.Running()
}

// Run dispatches events until the axis rests on its target or limit of
// simulated time has passed since the call
func (b *Bench) Run(limit time.Duration) (Result, error) {
	start := b.sched.Now()
	end := start + uint64(limit/time.Microsecond)*uint64(b.cfg.TimerClock)/1000000

	for !b.atRest() {
		wake, ok := b.sched.NextWake()
		if !ok || wake > end {
			return b.result(start), fmt.Errorf("%w within %v: %+v", ErrTimeout, limit, b.axis.Snapshot())
		}
		core.SetTime(uint32(wake * core.SystemTickFreq / uint64(b.cfg.TimerClock)))
		b.sched.Dispatch(wake)
	}
	return b.result(start), nil
}

func (b *Bench) result(start uint64) Result {
	a := b.axis
	return Result{
		Position:  a.Position(),
		Target:    a.Target(),
		SPS:       a.SPS(),
		PeakSPS:   b.peak,
		Pulses:    b.pulses,
		Stops:     b.counter.Stops(),
		Elapsed:   b.ticksToDuration(b.sched.Now() - start),
		Anomalies: append([]core.Anomaly(nil), b.anomalies...),
		Telemetry: b.telemetry.String(),
	}
}
