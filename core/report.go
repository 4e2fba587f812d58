package core

import "io"

// AnomalyKind classifies a non-fatal motion anomaly
type AnomalyKind uint8

const (
	// AnomalyOvershoot: the axis passed the target before reaching minSPS
	AnomalyOvershoot AnomalyKind = iota + 1
	// AnomalyUnderEstimate: still short of the target while already at minSPS
	AnomalyUnderEstimate
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyOvershoot:
		return "overshoot"
	case AnomalyUnderEstimate:
		return "underestimate"
	default:
		return "unknown"
	}
}

// Anomaly is a structured warning event. Motion continues on its existing
// trajectory; the report is informational only.
type Anomaly struct {
	Kind     AnomalyKind
	Axis     string
	Target   int32
	Position int32
	SPS      uint32
}

// AnomalyHandler receives anomaly reports. It runs in interrupt context and
// must not block.
type AnomalyHandler func(Anomaly)

type anomalyMask uint8

func (m anomalyMask) has(k AnomalyKind) bool { return m&(1<<k) != 0 }

// reportAnomaly reports each kind at most once per move
func (a *Axis) reportAnomaly(kind AnomalyKind) {
	if a.reported.has(kind) {
		return
	}
	a.reported |= 1 << kind

	var evt uint8 = EvtOvershoot
	if kind == AnomalyUnderEstimate {
		evt = EvtUnderEstimate
	}
	RecordEvent(evt, a.id, uint32(a.position), uint32(a.target))

	an := Anomaly{
		Kind:     kind,
		Axis:     a.name,
		Target:   a.target,
		Position: a.position,
		SPS:      a.sps,
	}
	if a.onAnomaly != nil {
		a.onAnomaly(an)
		return
	}
	DebugAsync(formatAnomaly(an))
}

// writeStopReport emits "<name>.stop:<position>\r\n" as three writes
func (a *Axis) writeStopReport() {
	if a.telemetry == nil {
		return
	}
	a.telemetry.WriteString(a.name)
	a.telemetry.WriteString(".stop:")
	a.telemetry.WriteString(itoa(int(a.position)) + "\r\n")
}

// formatAnomaly renders "<name>.warn:<kind>:<target>:<position>"
func formatAnomaly(an Anomaly) string {
	return an.Axis + ".warn:" + an.Kind.String() + ":" + itoa(int(an.Target)) + ":" + itoa(int(an.Position))
}

// TelemetryAnomalyHandler writes anomalies to w as
// "<name>.warn:<kind>:<target>:<position>\r\n"
func TelemetryAnomalyHandler(w io.StringWriter) AnomalyHandler {
	return func(an Anomaly) {
		w.WriteString(formatAnomaly(an) + "\r\n")
	}
}
