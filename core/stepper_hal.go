package core

import "io"

// PulseTimer is the hardware abstraction for the step pulse generator.
// Implementations emit one step pulse per period and raise a completion
// interrupt after each pulse; that interrupt must call Axis.OnPulse.
type PulseTimer interface {
	// SetStepFrequency reprograms the pulse rate in steps per second.
	// The new rate takes effect at the next update event.
	SetStepFrequency(sps uint32)

	// Start begins pulse generation on the axis channel
	Start()

	// Stop halts pulse generation on the axis channel
	Stop()

	// ForceUpdate latches pending period/prescaler values immediately
	ForceUpdate()
}

// PrescaledCounter is a register-level timer with a prescaler and an
// auto-reload (period) register, as found on most MCU general purpose timers.
// Use NewRegisterTimer to drive one as a PulseTimer.
type PrescaledCounter interface {
	SetPrescaler(psc uint32)
	SetReload(arr uint32)
	Start()
	Stop()
	GenerateUpdate()
}

// Preloader is implemented by counters that support buffered (preloaded)
// reload registers. NewAxis enables preload when available so a new period
// never truncates the pulse in flight.
type Preloader interface {
	EnablePreload()
}

// DirectionPin drives the stepper driver's direction input
type DirectionPin interface {
	// Set drives the pin high (true) or low (false)
	Set(high bool)
}

// DirectionFunc adapts a plain function to DirectionPin
type DirectionFunc func(high bool)

// Set calls f(high)
func (f DirectionFunc) Set(high bool) {
	f(high)
}

// Hardware bundles the collaborators an axis is bound to at init
type Hardware struct {
	Timer     PulseTimer
	Direction DirectionPin

	// Telemetry receives the arrival report. Writers must be serialized by
	// the caller if more than one source shares the stream. May be nil.
	Telemetry io.StringWriter

	// OnAnomaly receives overshoot/under-estimation reports. May be nil.
	OnAnomaly AnomalyHandler
}
