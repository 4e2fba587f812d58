//go:build rp2040

package main

import (
	"machine"
	"time"

	"stepctl/config"
	"stepctl/core"
	"stepctl/targets/pio"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// serialWriter sends telemetry and console replies over machine.Serial
type serialWriter struct{}

func (serialWriter) WriteString(s string) (int, error) {
	return machine.Serial.Write([]byte(s))
}

var telemetry serialWriter

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	board := config.DefaultBoardConfig()
	machine.Serial.Configure(machine.UARTConfig{BaudRate: board.TelemetryBaud})

	core.SetDebugWriter(func(s string) {
		telemetry.WriteString("# " + s + "\r\n")
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()
	core.InitAxisCommands()

	if err := board.Validate(); err != nil {
		halt("config: " + err.Error())
	}

	nextSM := uint8(0)
	for _, entry := range board.Axes {
		if err := setupAxis(board, entry, &nextSM); err != nil {
			halt("axis " + entry.Name + ": " + err.Error())
		}
	}

	go controllerLoop(time.Duration(board.ControllerPeriodUS) * time.Microsecond)

	core.DebugPrintln("stepctl ready")
	readConsole()
}

// setupAxis binds one configured axis to its pulse backend, direction pin
// and pulse interrupt, and registers it
func setupAxis(board *config.BoardConfig, entry config.AxisEntry, nextSM *uint8) error {
	step := machine.Pin(entry.StepPin)
	dir := machine.Pin(entry.DirPin)
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})

	var timer core.PulseTimer
	switch entry.Backend {
	case config.BackendPIO:
		gen, err := pio.NewPulseGenerator(rp2pio.PIO0.StateMachine(*nextSM), step)
		if err != nil {
			return err
		}
		*nextSM++
		timer = gen
	default:
		psc, _ := core.TimerRegisters(board.TimerClock, entry.MinSPS)
		if err := checkPrescaler(psc); err != nil {
			return err
		}
		timer = core.NewRegisterTimer(NewPWMCounter(step), board.TimerClock)
	}

	axis, err := core.NewAxis(entry.CoreConfig(board), core.Hardware{
		Timer:     timer,
		Direction: core.DirectionFunc(dir.Set),
		Telemetry: telemetry,
		OnAnomaly: core.TelemetryAnomalyHandler(telemetry),
	})
	if err != nil {
		return err
	}
	if _, err := core.RegisterAxis(axis); err != nil {
		return err
	}

	// One falling edge per emitted pulse, whichever backend drives the pin
	return step.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		core.Critical(axis.OnPulse)
	})
}

// controllerLoop runs the profile controller of every axis once per period
func controllerLoop(period time.Duration) {
	next := time.Now()
	for {
		next = next.Add(period)
		UpdateSystemTime()
		core.Critical(tickAll)
		time.Sleep(time.Until(next))
	}
}

func tickAll() {
	for i := uint8(0); i < core.AxisCount(); i++ {
		core.GetAxis(i).OnControllerTick()
	}
}

// readConsole dispatches newline-terminated command lines from the host
func readConsole() {
	line := make([]byte, 0, 64)
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		b, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}

		switch b {
		case '\r', '\n':
			if len(line) == 0 {
				continue
			}
			if err := core.DispatchCommand(string(line), telemetry); err != nil {
				telemetry.WriteString("# error: " + err.Error() + "\r\n")
			}
			line = line[:0]
		default:
			if len(line) < cap(line) {
				line = append(line, b)
			}
		}
	}
}

func halt(msg string) {
	for {
		telemetry.WriteString("# " + msg + "\r\n")
		time.Sleep(time.Second)
	}
}
