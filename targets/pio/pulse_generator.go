//go:build rp2040 || rp2350

package pio

// PIO square-wave step generator. The state machine free-runs a two
// instruction loop; the clock divider alone sets the step rate, so a rate
// change never needs the CPU once the program is loaded.

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// cyclesPerPulse is the length of one loop of the program in state
// machine cycles: two instructions of 1+31 cycles each
const cyclesPerPulse = 64

// buildPulseProgram creates the square-wave program using AssemblerV0
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Set(rp2pio.SetDestPins, 1).Delay(31).Encode(), // 0: set pins, 1 [31]
		asm.Set(rp2pio.SetDestPins, 0).Delay(31).Encode(), // 1: set pins, 0 [31]
		// .wrap
	}
}

const pulsePIOOrigin = -1 // Any free offset

// PulseGenerator emits step pulses on one pin from a PIO state machine.
// It implements core.PulseTimer.
type PulseGenerator struct {
	sm      rp2pio.StateMachine
	pin     machine.Pin
	offset  uint8
	cpuFreq uint32
	running bool
}

// NewPulseGenerator loads the program into sm's PIO block and binds it to
// pin. The generator starts stopped with the pin low.
func NewPulseGenerator(sm rp2pio.StateMachine, pin machine.Pin) (*PulseGenerator, error) {
	sm.TryClaim()
	block := sm.PIO()

	program := buildPulseProgram()
	offset, err := block.AddProgram(program, pulsePIOOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: block.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetPinsConsecutive(pin, 1, false)

	return &PulseGenerator{
		sm:      sm,
		pin:     pin,
		offset:  offset,
		cpuFreq: machine.CPUFrequency(),
	}, nil
}

// SetStepFrequency sets the clock divider for sps pulses per second. The
// divider changes on the fly; the pulse in flight finishes at the old rate
// only for the cycles already counted.
func (g *PulseGenerator) SetStepFrequency(sps uint32) {
	if sps == 0 {
		return
	}
	period := 1000000000 / (uint64(sps) * cyclesPerPulse)
	whole, frac, err := rp2pio.ClkDivFromPeriod(uint32(period), g.cpuFreq)
	if err != nil {
		// out of divider range; the axis config was validated against the
		// counter clock, so keep the previous rate
		return
	}
	g.sm.SetClkDiv(whole, frac)
}

// Start enables the state machine
func (g *PulseGenerator) Start() {
	g.sm.SetEnabled(true)
	g.running = true
}

// Stop disables the state machine and parks the program at its first
// instruction with the pin low, so the next Start begins a whole pulse
func (g *PulseGenerator) Stop() {
	g.sm.SetEnabled(false)
	g.sm.Restart()
	g.sm.Exec(rp2pio.AssemblerV0{}.Jmp(g.offset, rp2pio.JmpAlways).Encode())
	g.sm.SetPinsConsecutive(g.pin, 1, false)
	g.running = false
}

// ForceUpdate restarts the divider so a new rate applies from the next cycle
func (g *PulseGenerator) ForceUpdate() {
	g.sm.ClkDivRestart()
}

// Running reports whether the state machine is enabled
func (g *PulseGenerator) Running() bool {
	return g.running
}
