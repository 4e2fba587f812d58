package core

// State is the primary motion state of an axis. Exactly one is active.
type State uint8

const (
	StateStopped State = iota
	StateStarting
	StateRunningForward
	StateRunningBackward
)

// Modifier qualifies a running state. It is always ModNone unless the axis
// is RunningForward or RunningBackward.
type Modifier uint8

const (
	ModNone            Modifier = iota
	ModBreaking                 // decelerating toward minSPS
	ModBreakCorrection          // deceleration relaxed, coasting at current speed
)

// Status pairs a primary state with its modifier. The zero value is Stopped.
// Fields are unexported so a modifier can only be attached to a running state.
type Status struct {
	state State
	mod   Modifier
}

// Stopped returns the stopped status
func Stopped() Status { return Status{state: StateStopped} }

// Starting returns the starting status
func Starting() Status { return Status{state: StateStarting} }

// Running returns a running status in the given direction
func Running(backward bool, mod Modifier) Status {
	if backward {
		return Status{state: StateRunningBackward, mod: mod}
	}
	return Status{state: StateRunningForward, mod: mod}
}

// State returns the primary state
func (s Status) State() State { return s.state }

// Modifier returns the modifier (ModNone when not running)
func (s Status) Modifier() Modifier { return s.mod }

// IsRunning reports whether the axis is in either running state
func (s Status) IsRunning() bool {
	return s.state == StateRunningForward || s.state == StateRunningBackward
}

// Breaking reports whether the Breaking modifier is set
func (s Status) Breaking() bool { return s.mod == ModBreaking }

// BreakCorrection reports whether the BreakCorrection modifier is set
func (s Status) BreakCorrection() bool { return s.mod == ModBreakCorrection }

// withModifier returns s with mod applied. Non-running states are returned
// unchanged.
func (s Status) withModifier(mod Modifier) Status {
	if !s.IsRunning() {
		return s
	}
	s.mod = mod
	return s
}

func (st State) String() string {
	switch st {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunningForward:
		return "forward"
	case StateRunningBackward:
		return "backward"
	default:
		return "unknown"
	}
}

func (m Modifier) String() string {
	switch m {
	case ModNone:
		return ""
	case ModBreaking:
		return "breaking"
	case ModBreakCorrection:
		return "break_correction"
	default:
		return "unknown"
	}
}

func (s Status) String() string {
	if s.mod == ModNone {
		return s.state.String()
	}
	return s.state.String() + "+" + s.mod.String()
}
