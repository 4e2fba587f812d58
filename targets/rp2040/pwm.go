//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// pwmSlice represents one PWM slice's registers
type pwmSlice struct {
	CSR volatile.Register32
	DIV volatile.Register32
	CTR volatile.Register32
	CC  volatile.Register32
	TOP volatile.Register32
}

const (
	pwmSliceStride = 0x14
	pwmCSREnable   = 1 << 0
	pwmDivIntPos   = 4

	// maxPWMDivider is the largest integer divider a slice accepts
	maxPWMDivider = 255
)

var errDividerRange = errors.New("pwm: prescaler above 8-bit divider")

func getPWMSlice(num uint8) *pwmSlice {
	base := uintptr(unsafe.Pointer(&rp.PWM.CH0_CSR))
	return (*pwmSlice)(unsafe.Pointer(base + uintptr(num)*pwmSliceStride))
}

// PWMCounter drives one RP2040 PWM slice as a core.PrescaledCounter.
// The slice divider is the prescaler and TOP+1 is the reload. The step
// pin's compare value tracks half the period, so each wrap emits one
// pulse whose falling edge lands mid-period.
//
// TOP and CC are double-buffered in hardware and latch on wrap, so the
// counter needs no EnablePreload.
type PWMCounter struct {
	slice    *pwmSlice
	num      uint8
	channelB bool

	prescaler uint32
	reload    uint32
}

// NewPWMCounter claims the slice that owns pin and leaves it disabled
func NewPWMCounter(pin machine.Pin) *PWMCounter {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})

	num := uint8(pin>>1) & 0x7
	c := &PWMCounter{
		slice:    getPWMSlice(num),
		num:      num,
		channelB: pin&1 == 1,
	}
	c.slice.CSR.Set(0)
	c.slice.CTR.Set(0)
	c.slice.DIV.Set(1 << pwmDivIntPos)
	return c
}

// checkPrescaler reports whether psc fits the slice's 8-bit divider
func checkPrescaler(psc uint32) error {
	if psc+1 > maxPWMDivider {
		return errDividerRange
	}
	return nil
}

// SetPrescaler sets the integer clock divider to psc+1. The divider is
// not buffered and applies from the next counter clock.
func (c *PWMCounter) SetPrescaler(psc uint32) {
	c.prescaler = psc
	div := psc + 1
	if div > maxPWMDivider {
		div = maxPWMDivider
	}
	c.slice.DIV.Set(div << pwmDivIntPos)
}

// SetReload sets the period to arr counter clocks
func (c *PWMCounter) SetReload(arr uint32) {
	if arr == 0 {
		arr = 1
	}
	c.reload = arr
	c.slice.TOP.Set(arr - 1)

	compare := arr / 2
	if c.channelB {
		c.slice.CC.ReplaceBits(compare, 0xFFFF, 16)
	} else {
		c.slice.CC.ReplaceBits(compare, 0xFFFF, 0)
	}
}

func (c *PWMCounter) Start() {
	c.slice.CSR.SetBits(pwmCSREnable)
}

func (c *PWMCounter) Stop() {
	c.slice.CSR.ClearBits(pwmCSREnable)
}

// GenerateUpdate restarts the count from zero so the first period after
// Start is a whole one at the programmed rate
func (c *PWMCounter) GenerateUpdate() {
	c.slice.CTR.Set(0)
}
