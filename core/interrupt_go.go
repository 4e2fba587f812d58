//go:build !tinygo

package core

import "sync"

// interruptState is a placeholder for the saved interrupt mask on regular Go
type interruptState uintptr

// interruptMu stands in for the interrupt mask on regular Go so host
// goroutines playing the two interrupt sources are serialized.
var interruptMu sync.Mutex

// disableInterrupts takes the host-side interrupt lock
func disableInterrupts() interruptState {
	interruptMu.Lock()
	return 0
}

// restoreInterrupts releases the host-side interrupt lock
func restoreInterrupts(interruptState) {
	interruptMu.Unlock()
}
