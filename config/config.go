package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"stepctl/core"
)

// AxisEntry is the board-level description of one axis
type AxisEntry struct {
	Name      string `json:"name"`
	StepPin   uint8  `json:"step_pin"`
	DirPin    uint8  `json:"dir_pin"`
	InvertDir bool   `json:"invert_dir"`
	MinSPS    uint32 `json:"min_sps"`
	MaxSPS    uint32 `json:"max_sps"`

	// Backend selects the pulse generator: "pwm" (default) or "pio"
	Backend string `json:"backend"`
}

// BoardConfig is the complete controller configuration
type BoardConfig struct {
	TimerClock         uint32      `json:"timer_clock"`
	ControllerPeriodUS uint32      `json:"controller_period_us"`
	TelemetryBaud      uint32      `json:"telemetry_baud"`
	Axes               []AxisEntry `json:"axes"`
}

const (
	BackendPWM = "pwm"
	BackendPIO = "pio"
)

var (
	ErrNoAxes        = errors.New("config: no axes defined")
	ErrUnnamedAxis   = errors.New("config: axis name is required")
	ErrDuplicateAxis = errors.New("config: duplicate axis name")
	ErrPinConflict   = errors.New("config: pin used twice")
	ErrBackend       = errors.New("config: unknown backend")
)

// LoadConfig parses a JSON configuration, applies defaults and validates it
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values with the driver defaults
func applyDefaults(config *BoardConfig) {
	if config.TimerClock == 0 {
		config.TimerClock = core.DefaultTimerClock
	}
	if config.ControllerPeriodUS == 0 {
		config.ControllerPeriodUS = core.DefaultControllerPeriodUS
	}
	if config.TelemetryBaud == 0 {
		config.TelemetryBaud = 115200
	}

	for i := range config.Axes {
		axis := &config.Axes[i]
		if axis.MinSPS == 0 {
			axis.MinSPS = core.DefaultMinSPS
		}
		if axis.MaxSPS == 0 {
			axis.MaxSPS = core.DefaultMaxSPS
		}
		if axis.Backend == "" {
			axis.Backend = BackendPWM
		}
	}
}

// Validate checks every axis against the core limits and for pin clashes
func (c *BoardConfig) Validate() error {
	if len(c.Axes) == 0 {
		return ErrNoAxes
	}
	if len(c.Axes) > core.MaxAxes {
		return fmt.Errorf("config: %d axes: %w", len(c.Axes), core.ErrAxisLimit)
	}

	names := make(map[string]bool)
	pins := make(map[uint8]string)
	for _, axis := range c.Axes {
		if axis.Name == "" {
			return ErrUnnamedAxis
		}
		if names[axis.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateAxis, axis.Name)
		}
		names[axis.Name] = true

		if axis.Backend != BackendPWM && axis.Backend != BackendPIO {
			return fmt.Errorf("%w %q on axis %q", ErrBackend, axis.Backend, axis.Name)
		}

		for _, pin := range []uint8{axis.StepPin, axis.DirPin} {
			if owner, used := pins[pin]; used {
				return fmt.Errorf("%w: gpio%d (%s, %s)", ErrPinConflict, pin, owner, axis.Name)
			}
			pins[pin] = axis.Name
		}

		if err := axis.CoreConfig(c).Validate(); err != nil {
			return fmt.Errorf("config: axis %q: %w", axis.Name, err)
		}
	}
	return nil
}

// CoreConfig returns the core initialization inputs for this axis
func (a AxisEntry) CoreConfig(board *BoardConfig) core.AxisConfig {
	return core.AxisConfig{
		Name:               a.Name,
		TimerClock:         board.TimerClock,
		ControllerPeriodUS: board.ControllerPeriodUS,
		MinSPS:             a.MinSPS,
		MaxSPS:             a.MaxSPS,
		InvertDir:          a.InvertDir,
	}
}

// Axis returns the entry with the given name
func (c *BoardConfig) Axis(name string) (AxisEntry, bool) {
	for _, axis := range c.Axes {
		if axis.Name == name {
			return axis, true
		}
	}
	return AxisEntry{}, false
}

// DefaultBoardConfig returns a two-axis board on an RP2040. The PWM slice
// counter runs from the 125 MHz system clock.
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		TimerClock:         125000000,
		ControllerPeriodUS: core.DefaultControllerPeriodUS,
		TelemetryBaud:      115200,
		Axes: []AxisEntry{
			{
				Name:    "x",
				StepPin: 2,
				DirPin:  3,
				MinSPS:  core.DefaultMinSPS,
				MaxSPS:  core.DefaultMaxSPS,
				Backend: BackendPWM,
			},
			{
				Name:    "y",
				StepPin: 6,
				DirPin:  7,
				MinSPS:  core.DefaultMinSPS,
				MaxSPS:  core.DefaultMaxSPS,
				Backend: BackendPIO,
			},
		},
	}
}
