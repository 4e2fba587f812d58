package core

// Critical runs fn with interrupts disabled. Both OnPulse and
// OnControllerTick must run under the same exclusion for a given Axis;
// platforms that instead run both handlers at one interrupt priority may
// call them directly. Critical must not be nested.
func Critical(fn func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn()
}
