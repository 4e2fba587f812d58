package core

// correctionMinSwitches is how many deceleration steps must still remain
// before an early deceleration may be relaxed.
const correctionMinSwitches = 10

// OnControllerTick is the Profile Controller. Call it at the fixed
// controller period. Speed decisions are taken every ctrlPrescaler calls;
// the deceleration-point check runs on every call.
func (a *Axis) OnControllerTick() {
	status := a.status

	switch status.state {
	case StateStopped:
		if a.target != a.position {
			a.begin()
		}
		return
	case StateStarting:
		return
	}

	a.ctrlPrescalerTicks--

	if !status.Breaking() && a.mustBrake() {
		a.breakInitiationSPS = a.sps
		a.status = a.status.withModifier(ModBreaking)
		RecordEvent(EvtBreak, a.id, uint32(a.position), a.sps)
		a.decelerate()

		// acceleration cut short, or turning back from top speed
		if a.ctrlPrescalerTicks == 0 {
			a.ctrlPrescalerTicks = a.ctrlPrescaler
		}
		return
	}

	if a.ctrlPrescalerTicks != 0 {
		return
	}

	switch {
	case status.Breaking():
		onInitiation := int32((a.breakInitiationSPS - a.minSPS) / a.accelSPS)
		left := int32((a.sps - a.minSPS) / a.accelSPS)

		// Over half the planned reduction is done and plenty of speed is
		// left: the brake point was estimated early, so coast for a while.
		if onInitiation/2 > left && left > correctionMinSwitches {
			a.status = a.status.withModifier(ModBreakCorrection)
			RecordEvent(EvtBreakCorrection, a.id, uint32(a.position), a.sps)
		}

		// the step down for this tick happens either way
		a.decelerate()
	case !status.BreakCorrection():
		a.accelerate()
	}

	a.ctrlPrescalerTicks = a.ctrlPrescaler
}

// begin starts a move from Stopped
func (a *Axis) begin() {
	a.ctrlPrescalerTicks = a.ctrlPrescaler
	a.status = Starting()
	a.reported = 0
	a.timer.ForceUpdate()
	a.timer.Start()
	RecordEvent(EvtStart, a.id, uint32(a.position), uint32(a.target))
}

// mustBrake estimates whether deceleration has to start now. Time to target
// assumes the rest of the distance is covered at the mean of current and
// minimum speed. Time to slow down counts the remaining ticks of this
// sub-period plus one full sub-period per speed increment above minSPS.
func (a *Axis) mustBrake() bool {
	timeToTarget := 2.0 * float32(a.stepsToTarget()) / float32(a.sps+a.minSPS)

	switches := (a.sps - a.minSPS) / a.accelSPS
	controllerTicks := uint64(a.ctrlPrescaler)*uint64(switches) + uint64(a.ctrlPrescalerTicks)
	timeToReduce := a.ctrlPeriodSeconds * float32(controllerTicks)

	return timeToTarget <= timeToReduce
}
