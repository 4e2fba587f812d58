package config

import (
	"errors"
	"testing"

	"stepctl/core"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"axes":[{"name":"x","step_pin":2,"dir_pin":3}]}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.TimerClock != core.DefaultTimerClock {
		t.Errorf("Expected timer clock %d, got %d", core.DefaultTimerClock, cfg.TimerClock)
	}
	if cfg.ControllerPeriodUS != core.DefaultControllerPeriodUS {
		t.Errorf("Expected period %d, got %d", core.DefaultControllerPeriodUS, cfg.ControllerPeriodUS)
	}
	if cfg.TelemetryBaud != 115200 {
		t.Errorf("Expected baud 115200, got %d", cfg.TelemetryBaud)
	}

	x := cfg.Axes[0]
	if x.MinSPS != core.DefaultMinSPS || x.MaxSPS != core.DefaultMaxSPS {
		t.Errorf("Expected default speeds, got %d..%d", x.MinSPS, x.MaxSPS)
	}
	if x.Backend != BackendPWM {
		t.Errorf("Expected pwm backend, got %q", x.Backend)
	}
}

func TestLoadConfigKeepsExplicitValues(t *testing.T) {
	data := `{
		"timer_clock": 125000000,
		"controller_period_us": 500,
		"axes": [
			{"name": "a", "step_pin": 10, "dir_pin": 11, "invert_dir": true,
			 "min_sps": 300, "max_sps": 20000, "backend": "pio"}
		]
	}`
	cfg, err := LoadConfig([]byte(data))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	got := cfg.Axes[0].CoreConfig(cfg)
	expected := core.AxisConfig{
		Name:               "a",
		TimerClock:         125000000,
		ControllerPeriodUS: 500,
		MinSPS:             300,
		MaxSPS:             20000,
		InvertDir:          true,
	}
	if got != expected {
		t.Errorf("CoreConfig = %+v, expected %+v", got, expected)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"no axes", `{}`, ErrNoAxes},
		{"unnamed", `{"axes":[{"step_pin":1,"dir_pin":2}]}`, ErrUnnamedAxis},
		{"duplicate", `{"axes":[{"name":"x","step_pin":1,"dir_pin":2},{"name":"x","step_pin":3,"dir_pin":4}]}`, ErrDuplicateAxis},
		{"pin reuse", `{"axes":[{"name":"x","step_pin":1,"dir_pin":2},{"name":"y","step_pin":2,"dir_pin":4}]}`, ErrPinConflict},
		{"step equals dir", `{"axes":[{"name":"x","step_pin":5,"dir_pin":5}]}`, ErrPinConflict},
		{"backend", `{"axes":[{"name":"x","step_pin":1,"dir_pin":2,"backend":"dma"}]}`, ErrBackend},
		{"speed range", `{"axes":[{"name":"x","step_pin":1,"dir_pin":2,"min_sps":500,"max_sps":400}]}`, core.ErrInvalidSpeedRange},
		{"controller too slow", `{"controller_period_us":2000,"axes":[{"name":"x","step_pin":1,"dir_pin":2,"min_sps":200}]}`, core.ErrControllerTooSlow},
		{"timer range", `{"timer_clock":100000,"axes":[{"name":"x","step_pin":1,"dir_pin":2}]}`, core.ErrTimerRange},
	}

	for _, test := range tests {
		_, err := LoadConfig([]byte(test.data))
		if !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.name, test.err, err)
		}
	}
}

func TestLoadConfigTooManyAxes(t *testing.T) {
	cfg := &BoardConfig{}
	for i := 0; i <= core.MaxAxes; i++ {
		cfg.Axes = append(cfg.Axes, AxisEntry{Name: string(rune('a' + i)), StepPin: uint8(2 * i), DirPin: uint8(2*i + 1)})
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); !errors.Is(err, core.ErrAxisLimit) {
		t.Errorf("Expected ErrAxisLimit, got %v", err)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	if _, err := LoadConfig([]byte(`{"axes":`)); err == nil {
		t.Error("Expected parse error")
	}
}

func TestDefaultBoardConfigIsValid(t *testing.T) {
	cfg := DefaultBoardConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if len(cfg.Axes) != 2 {
		t.Fatalf("Expected 2 axes, got %d", len(cfg.Axes))
	}
	y, ok := cfg.Axis("y")
	if !ok || y.Backend != BackendPIO {
		t.Errorf("Expected axis y on pio, got %+v (found=%v)", y, ok)
	}
	if _, ok := cfg.Axis("z"); ok {
		t.Error("Unexpected axis z")
	}
}
