package core

import "errors"

// Driver safe operating range. 150 SPS is roughly an hour per turn with
// microstepping; 400 kHz is 2.5us per step against a 2us driver minimum.
const (
	DefaultMinSPS             = 150
	DefaultMaxSPS             = 400000
	DefaultTimerClock         = 72000000
	DefaultControllerPeriodUS = 1000
)

// maxMinStepPeriodProduct bounds MinSPS*ControllerPeriodUS. One step at
// MinSPS must span at least 10/3 controller periods, otherwise the
// controller accelerates before a short move's first counted pulse and
// the axis overshoots on every return move.
const maxMinStepPeriodProduct = 300000

var (
	ErrInvalidSpeedRange = errors.New("invalid speed range: need 0 < min_sps <= max_sps, max_sps == min_sps or max_sps >= 2*min_sps")
	ErrInvalidPeriod     = errors.New("controller period must be > 0")
	ErrControllerTooSlow = errors.New("controller period too long for min_sps: need min_sps*controller_period_us <= 300000")
	ErrTimerRange        = errors.New("step rate not representable by 16-bit prescaler/reload")
	ErrNoTimer           = errors.New("pulse timer is required")
	ErrNoDirection       = errors.New("direction pin is required")
)

// AxisConfig holds the inputs consumed once at axis initialization
type AxisConfig struct {
	Name               string
	TimerClock         uint32 // pulse timer input clock (Hz)
	ControllerPeriodUS uint32 // OnControllerTick period
	MinSPS             uint32
	MaxSPS             uint32
	InvertDir          bool
}

// DefaultAxisConfig returns the driver defaults for a named axis
func DefaultAxisConfig(name string) AxisConfig {
	return AxisConfig{
		Name:               name,
		TimerClock:         DefaultTimerClock,
		ControllerPeriodUS: DefaultControllerPeriodUS,
		MinSPS:             DefaultMinSPS,
		MaxSPS:             DefaultMaxSPS,
	}
}

// Validate checks the speed range against the controller period and the
// timer's register width. A rate that cannot be programmed, or a range
// under which short moves never settle, is a configuration error, never a
// per-tick condition.
func (c AxisConfig) Validate() error {
	if c.MinSPS == 0 || c.MinSPS > c.MaxSPS {
		return ErrInvalidSpeedRange
	}
	// the range must hold at least one whole acceleration increment
	if c.MaxSPS != c.MinSPS && c.MaxSPS-c.MinSPS < c.MinSPS {
		return ErrInvalidSpeedRange
	}
	if c.ControllerPeriodUS == 0 {
		return ErrInvalidPeriod
	}
	if uint64(c.MinSPS)*uint64(c.ControllerPeriodUS) > maxMinStepPeriodProduct {
		return ErrControllerTooSlow
	}
	if !registersFit(c.TimerClock, c.MinSPS) || !registersFit(c.TimerClock, c.MaxSPS) {
		return ErrTimerRange
	}
	return nil
}

// NewAxis validates cfg, binds the axis to its hardware and sets the
// initial Stopped state. The acceleration increment equals MinSPS: one
// coarse step per controller decision.
func NewAxis(cfg AxisConfig, hw Hardware) (*Axis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hw.Timer == nil {
		return nil, ErrNoTimer
	}
	if hw.Direction == nil {
		return nil, ErrNoDirection
	}

	if p, ok := hw.Timer.(Preloader); ok {
		p.EnablePreload()
	}

	a := &Axis{
		name:      cfg.Name,
		timer:     hw.Timer,
		dir:       hw.Direction,
		telemetry: hw.Telemetry,
		onAnomaly: hw.OnAnomaly,
		invertDir: cfg.InvertDir,

		minSPS: cfg.MinSPS,
		maxSPS: cfg.MaxSPS,
	}
	a.sps = a.minSPS
	a.accelSPS = a.minSPS

	// Controller decisions happen once per step interval at the slowest
	// speed a move can leave, expressed in controller periods.
	a.ctrlPrescaler = 1 + (1000000/(a.minSPS+a.accelSPS+1))/cfg.ControllerPeriodUS
	a.ctrlPrescalerTicks = a.ctrlPrescaler
	a.ctrlPeriodSeconds = float32(cfg.ControllerPeriodUS) / 1000000.0

	a.position = 0
	a.target = 0
	a.breakInitiationSPS = a.maxSPS
	a.status = Stopped()

	a.timer.SetStepFrequency(a.sps)
	return a, nil
}
