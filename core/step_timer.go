package core

// Timer Reconfigurator: converts a step rate into prescaler/reload register
// values for a 16-bit counter and applies accelerate/decelerate steps.

const (
	// MaxReload is the largest value the 16-bit auto-reload register holds
	MaxReload = 0xFFFF

	// MaxPrescaler is the largest value the 16-bit prescaler register holds
	MaxPrescaler = 0xFFFF
)

// TimerRegisters computes the prescaler and reload values that make a counter
// clocked at clock overflow sps times per second. The smallest prescaler that
// fits the reload into MaxReload is chosen. Integer truncation means the
// resulting rate may be slightly above sps; the error is bounded by one
// counter tick per period.
func TimerRegisters(clock, sps uint32) (prescaler, reload uint32) {
	if sps == 0 {
		return MaxPrescaler, MaxReload
	}
	reload = clock / sps
	if reload > MaxReload {
		prescaler = (reload - 1) / MaxReload
		reload /= prescaler + 1
	}
	return prescaler, reload
}

// RegisterRate is the inverse of TimerRegisters: the pulse rate a counter
// clocked at clock produces with the given register values.
func RegisterRate(clock, prescaler, reload uint32) float64 {
	if reload == 0 {
		return 0
	}
	return float64(clock) / (float64(prescaler+1) * float64(reload))
}

// registersFit reports whether sps can be programmed into a 16-bit
// prescaler/reload pair with a nonzero reload.
func registersFit(clock, sps uint32) bool {
	if sps == 0 {
		return false
	}
	psc, arr := TimerRegisters(clock, sps)
	return psc <= MaxPrescaler && arr > 0 && arr <= MaxReload
}

// RegisterTimer drives a PrescaledCounter as a PulseTimer
type RegisterTimer struct {
	counter PrescaledCounter
	clock   uint32

	prescaler uint32
	reload    uint32
}

// NewRegisterTimer wraps counter, whose input clock runs at clock Hz
func NewRegisterTimer(counter PrescaledCounter, clock uint32) *RegisterTimer {
	return &RegisterTimer{counter: counter, clock: clock}
}

// SetStepFrequency programs prescaler and reload for sps
func (t *RegisterTimer) SetStepFrequency(sps uint32) {
	t.prescaler, t.reload = TimerRegisters(t.clock, sps)
	t.counter.SetPrescaler(t.prescaler)
	t.counter.SetReload(t.reload)
}

// Start starts the counter
func (t *RegisterTimer) Start() { t.counter.Start() }

// Stop stops the counter
func (t *RegisterTimer) Stop() { t.counter.Stop() }

// ForceUpdate generates an update event so pending registers latch now
func (t *RegisterTimer) ForceUpdate() { t.counter.GenerateUpdate() }

// EnablePreload forwards to the counter when it supports preload
func (t *RegisterTimer) EnablePreload() {
	if p, ok := t.counter.(Preloader); ok {
		p.EnablePreload()
	}
}

// Registers returns the last programmed prescaler and reload values
func (t *RegisterTimer) Registers() (prescaler, reload uint32) {
	return t.prescaler, t.reload
}

// accelerate raises the step rate by one increment, clamped at maxSPS
func (a *Axis) accelerate() {
	if a.sps >= a.maxSPS {
		return
	}
	next := a.sps + a.accelSPS
	if next > a.maxSPS || next < a.sps {
		next = a.maxSPS
	}
	a.sps = next
	a.timer.SetStepFrequency(a.sps)
}

// decelerate lowers the step rate by one increment, clamped at minSPS
func (a *Axis) decelerate() {
	if a.sps <= a.minSPS {
		return
	}
	next := a.minSPS
	if a.sps-a.minSPS > a.accelSPS {
		next = a.sps - a.accelSPS
	}
	a.sps = next
	a.timer.SetStepFrequency(a.sps)
}
