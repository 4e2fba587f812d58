package sim

// Counter models a 16-bit general purpose timer with a prescaler and a
// preloadable auto-reload register. Written values sit in shadow
// registers until an update event: an overflow or GenerateUpdate. Without
// preload, reload writes take effect immediately; the prescaler is always
// buffered.
type Counter struct {
	prescaler, reload             uint32 // active
	shadowPrescaler, shadowReload uint32

	preload bool
	running bool

	starts, stops, updates int
}

func (c *Counter) SetPrescaler(psc uint32) {
	c.shadowPrescaler = psc
}

func (c *Counter) SetReload(arr uint32) {
	c.shadowReload = arr
	if !c.preload {
		c.reload = arr
	}
}

func (c *Counter) Start() {
	c.running = true
	c.starts++
}

func (c *Counter) Stop() {
	c.running = false
	c.stops++
}

// GenerateUpdate latches the shadow registers
func (c *Counter) GenerateUpdate() {
	c.latch()
	c.updates++
}

func (c *Counter) EnablePreload() {
	c.preload = true
}

// overflow is the update event at the end of each period
func (c *Counter) overflow() {
	c.latch()
}

func (c *Counter) latch() {
	c.prescaler = c.shadowPrescaler
	c.reload = c.shadowReload
}

// Period returns the active overflow period in input clock ticks
func (c *Counter) Period() uint64 {
	return uint64(c.prescaler+1) * uint64(c.reload)
}

// Registers returns the active prescaler and reload values
func (c *Counter) Registers() (prescaler, reload uint32) {
	return c.prescaler, c.reload
}

// Running reports whether the counter is enabled
func (c *Counter) Running() bool {
	return c.running
}

// Stops returns how many times the counter was stopped
func (c *Counter) Stops() int {
	return c.stops
}
