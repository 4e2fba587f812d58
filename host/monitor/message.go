package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message types carried on the telemetry stream
const (
	TypeStop    = "stop"
	TypeWarning = "warn"
)

// Anomaly kinds in warning lines
const (
	KindOvershoot     = "overshoot"
	KindUnderEstimate = "underestimate"
)

var ErrMalformed = errors.New("malformed telemetry line")

// Message is one parsed telemetry line. Stop lines carry only Axis and
// Position.
type Message struct {
	Type     string    `json:"type"`
	Axis     string    `json:"axis"`
	Kind     string    `json:"kind,omitempty"`
	Target   int32     `json:"target"`
	Position int32     `json:"position"`
	Time     time.Time `json:"time"`
}

// ParseLine parses "<axis>.stop:<pos>" or
// "<axis>.warn:<kind>:<target>:<pos>". Trailing CR/LF is ignored.
func ParseLine(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")

	axis, rest, ok := strings.Cut(line, ".")
	if !ok || axis == "" {
		return Message{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}

	typ, body, ok := strings.Cut(rest, ":")
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}

	switch typ {
	case TypeStop:
		pos, err := parseInt32(body)
		if err != nil {
			return Message{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
		}
		return Message{Type: TypeStop, Axis: axis, Target: pos, Position: pos}, nil

	case TypeWarning:
		fields := strings.Split(body, ":")
		if len(fields) != 3 {
			return Message{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		if fields[0] != KindOvershoot && fields[0] != KindUnderEstimate {
			return Message{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, fields[0])
		}
		target, err := parseInt32(fields[1])
		if err != nil {
			return Message{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
		}
		pos, err := parseInt32(fields[2])
		if err != nil {
			return Message{}, fmt.Errorf("%w: %q: %v", ErrMalformed, line, err)
		}
		return Message{Type: TypeWarning, Axis: axis, Kind: fields[0], Target: target, Position: pos}, nil
	}
	return Message{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, typ)
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}
