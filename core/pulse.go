package core

// OnPulse is the Pulse Completion Handler. Call it exactly once after each
// step pulse has been emitted, from the pulse timer's completion interrupt.
func (a *Axis) OnPulse() {
	switch a.status.state {
	case StateStarting:
		switch {
		case a.target < a.position:
			a.status = Running(true, ModNone)
			a.setDirection(true)
		case a.target > a.position:
			a.status = Running(false, ModNone)
			a.setDirection(false)
		default:
			// Starting with nothing to do; the next controller tick
			// re-evaluates.
			RecordEvent(EvtStartingNoop, a.id, uint32(a.position), 0)
			return
		}
		RecordEvent(EvtDirection, a.id, uint32(a.position), uint32(a.status.state))

	case StateRunningForward, StateRunningBackward:
		// The pulse was generated by the previous timer period.
		a.position += a.stepUnit()
		remaining := a.stepsToTarget()

		if remaining < 0 {
			a.reportAnomaly(AnomalyOvershoot)
		} else if remaining > 0 && a.sps == a.minSPS {
			a.reportAnomaly(AnomalyUnderEstimate)
		}

		if remaining <= 0 && a.sps == a.minSPS {
			a.arrive()
		}
	}
}

// arrive stops the hardware and emits the completion report
func (a *Axis) arrive() {
	a.status = Stopped()
	a.timer.Stop()
	RecordEvent(EvtStop, a.id, uint32(a.position), a.sps)
	a.writeStopReport()
}

// setDirection drives the direction pin; forward is high unless inverted
func (a *Axis) setDirection(backward bool) {
	a.dir.Set(backward == a.invertDir)
}
