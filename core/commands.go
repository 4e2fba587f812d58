package core

import "io"

// RegisterAxisCommands installs the standard console commands on r
func RegisterAxisCommands(r *CommandRegistry) {
	r.Register("move", "move:<steps>  set a new target", cmdMove)
	r.Register("zero", "zero[:<steps>]  redefine the current position (stopped only)", cmdZero)
	r.Register("estop", "stop pulse output at once", cmdEmergencyStop)
	r.Register("status", "report position, target, rate and state", cmdStatus)
	r.RegisterGlobal("events", "dump the motion event ring", cmdEvents)
	r.RegisterGlobal("help", "list commands", func(_ *Axis, _ string, out io.StringWriter) error {
		_, err := out.WriteString(r.Help())
		return err
	})
}

// InitAxisCommands registers the standard commands on the global registry
func InitAxisCommands() {
	RegisterAxisCommands(globalRegistry)
}

func cmdMove(a *Axis, arg string, out io.StringWriter) error {
	target, ok := atoi32(arg)
	if !ok {
		return errBadArgument(arg)
	}
	Critical(func() { a.SetTarget(target) })
	return nil
}

func cmdZero(a *Axis, arg string, out io.StringWriter) error {
	pos := int32(0)
	if arg != "" {
		var ok bool
		if pos, ok = atoi32(arg); !ok {
			return errBadArgument(arg)
		}
	}
	var err error
	Critical(func() { err = a.SetPosition(pos) })
	return err
}

func cmdEmergencyStop(a *Axis, arg string, out io.StringWriter) error {
	Critical(a.EmergencyStop)
	return nil
}

// cmdStatus replies "<axis>.status:<pos>:<target>:<sps>:<state>"
func cmdStatus(a *Axis, arg string, out io.StringWriter) error {
	var snap Snapshot
	Critical(func() { snap = a.Snapshot() })
	_, err := out.WriteString(snap.Name + ".status:" +
		itoa(int(snap.Position)) + ":" +
		itoa(int(snap.Target)) + ":" +
		utoa(snap.SPS) + ":" +
		snap.Status.String() + "\r\n")
	return err
}

func cmdEvents(_ *Axis, _ string, _ io.StringWriter) error {
	DumpEventRing()
	return nil
}

func errBadArgument(arg string) error {
	return &commandError{err: ErrBadArgument, detail: arg}
}
