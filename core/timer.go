package core

import "sync/atomic"

// SystemTickFreq is the rate of the system tick used to timestamp events.
// Platforms feed it from a free-running microsecond counter.
const SystemTickFreq = 1000000

var systemTicks uint32

// GetTime returns the current system time in ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (hardware integration and simulation)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
