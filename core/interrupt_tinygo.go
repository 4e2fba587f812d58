//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts on this core, so neither the pulse
// edge nor the controller tick can preempt the caller
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the mask saved by disableInterrupts
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
