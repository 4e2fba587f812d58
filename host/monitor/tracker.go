package monitor

import (
	"sort"
	"sync"
	"time"
)

// AxisState is the last known state of one axis as seen on telemetry
type AxisState struct {
	Name           string    `json:"name"`
	Position       int32     `json:"position"`
	Stops          int       `json:"stops"`
	Overshoots     int       `json:"overshoots"`
	UnderEstimates int       `json:"underestimates"`
	LastWarning    *Message  `json:"last_warning,omitempty"`
	Updated        time.Time `json:"updated"`
}

// Tracker accumulates telemetry into per-axis state. Safe for concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	axes map[string]*AxisState
}

func NewTracker() *Tracker {
	return &Tracker{axes: make(map[string]*AxisState)}
}

// Publish folds msg into the axis state
func (t *Tracker) Publish(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.axes[msg.Axis]
	if !ok {
		st = &AxisState{Name: msg.Axis}
		t.axes[msg.Axis] = st
	}
	st.Updated = msg.Time

	switch msg.Type {
	case TypeStop:
		st.Position = msg.Position
		st.Stops++
	case TypeWarning:
		// position is only authoritative at a stop
		switch msg.Kind {
		case KindOvershoot:
			st.Overshoots++
		case KindUnderEstimate:
			st.UnderEstimates++
		}
		w := msg
		st.LastWarning = &w
	}
}

// Axis returns a copy of the named axis state
func (t *Tracker) Axis(name string) (AxisState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.axes[name]
	if !ok {
		return AxisState{}, false
	}
	return *st, true
}

// Axes returns copies of all axis states sorted by name
func (t *Tracker) Axes() []AxisState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]AxisState, 0, len(t.axes))
	for _, st := range t.axes {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
