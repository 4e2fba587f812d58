package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// MotionEvent captures a state transition for post-mortem analysis
type MotionEvent struct {
	EventType uint8  // Event type code
	Axis      uint8  // Axis registry id
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtStart           = 1 // Stopped -> Starting (v1=position, v2=target)
	EvtDirection       = 2 // Starting -> Running (v1=position, v2=state)
	EvtBreak           = 3 // deceleration began (v1=position, v2=sps)
	EvtBreakCorrection = 4 // deceleration relaxed (v1=position, v2=sps)
	EvtStop            = 5 // arrived or emergency stop (v1=position, v2=sps)
	EvtOvershoot       = 6 // passed target above minSPS (v1=position, v2=target)
	EvtUnderEstimate   = 7 // at minSPS short of target (v1=position, v2=target)
	EvtStartingNoop    = 8 // pulse in Starting with target == position
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (non-blocking, safe from interrupt context)
	eventRing     [EventRingSize]MotionEvent
	eventRingHead uint8
	eventsEnabled bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks while the writer runs; use DebugAsync from interrupt context.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking).
// Drops the message if the channel is full or async output is not started.
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent captures a motion event in the ring buffer
func RecordEvent(eventType, axis uint8, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = MotionEvent{
		EventType: eventType,
		Axis:      axis,
		Clock:     GetTime(),
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns the captured events, oldest first
func RecentEvents() []MotionEvent {
	out := make([]MotionEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtStart:
		return "START"
	case EvtDirection:
		return "DIRECTION"
	case EvtBreak:
		return "BREAK"
	case EvtBreakCorrection:
		return "BREAK_CORR"
	case EvtStop:
		return "STOP"
	case EvtOvershoot:
		return "OVERSHOOT!"
	case EvtUnderEstimate:
		return "UNDERESTIMATE"
	case EvtStartingNoop:
		return "START_NOOP"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error).
// Not for interrupt context.
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[MOTION] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		debugPrintln("[MOTION] " + eventName(evt.EventType) +
			" axis=" + itoa(int(evt.Axis)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + itoa(int(int32(evt.Value1))) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[MOTION] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = MotionEvent{}
	}
	eventRingHead = 0
}
