// Package core implements trapezoidal stepper axis control. Two interrupt
// entry points share one Axis: OnPulse runs once per emitted step pulse and
// OnControllerTick runs at the fixed controller period. Neither locks. The
// platform must guarantee the two never overlap on the same Axis, either by
// equal interrupt priority or by invoking both through Critical.
package core

import (
	"errors"
	"io"
)

// MaxAxes is the size of the axis registry
const MaxAxes = 8

var (
	ErrAxisLimit  = errors.New("axis registry full")
	ErrAxisMoving = errors.New("axis is not stopped")
	ErrNilAxis    = errors.New("axis is nil")
)

// Axis is the per-motor motion state record
type Axis struct {
	name string
	id   uint8

	position int32 // advanced only by OnPulse
	target   int32

	status Status

	sps      uint32
	minSPS   uint32
	maxSPS   uint32
	accelSPS uint32

	// speed at which the current deceleration began
	breakInitiationSPS uint32

	// sub-sampled controller clock
	ctrlPrescaler      uint32
	ctrlPrescalerTicks uint32
	ctrlPeriodSeconds  float32

	invertDir bool

	// anomaly kinds already reported during the current move
	reported anomalyMask

	timer     PulseTimer
	dir       DirectionPin
	telemetry io.StringWriter
	onAnomaly AnomalyHandler
}

// Snapshot is a copy of an axis's observable state
type Snapshot struct {
	Name               string
	Position           int32
	Target             int32
	Status             Status
	SPS                uint32
	BreakInitiationSPS uint32
}

// Limits are the speed bounds and controller timing derived at init
type Limits struct {
	MinSPS           uint32
	MaxSPS           uint32
	AccelerationSPS  uint32
	ControllerDivide uint32
}

// Global axis registry
var (
	axes      [MaxAxes]*Axis
	axisCount uint8
)

// RegisterAxis stores a in the registry and returns its id
func RegisterAxis(a *Axis) (uint8, error) {
	if a == nil {
		return 0, ErrNilAxis
	}
	if axisCount >= MaxAxes {
		return 0, ErrAxisLimit
	}
	id := axisCount
	a.id = id
	axes[id] = a
	axisCount++
	return id, nil
}

// GetAxis returns a registered axis by id
func GetAxis(id uint8) *Axis {
	if id >= axisCount {
		return nil
	}
	return axes[id]
}

// AxisCount returns the number of registered axes
func AxisCount() uint8 {
	return axisCount
}

// FindAxis returns the registered axis with the given name, or nil
func FindAxis(name string) *Axis {
	for i := uint8(0); i < axisCount; i++ {
		if axes[i].name == name {
			return axes[i]
		}
	}
	return nil
}

// ResetAxes clears the registry
func ResetAxes() {
	for i := range axes {
		axes[i] = nil
	}
	axisCount = 0
}

// Name returns the telemetry label
func (a *Axis) Name() string { return a.name }

// ID returns the registry id (0 if never registered)
func (a *Axis) ID() uint8 { return a.id }

// Position returns the current position in steps
func (a *Axis) Position() int32 { return a.position }

// Target returns the target position in steps
func (a *Axis) Target() int32 { return a.target }

// SetTarget sets the target position. A move starts on the next controller
// tick when the axis is stopped. A mid-move rewrite is not replanned: a
// target behind the axis makes it decelerate and stop past it, and the next
// tick starts a move back.
func (a *Axis) SetTarget(target int32) {
	a.target = target
}

// SetPosition redefines the current position (homing). Only allowed while
// stopped. The target follows so no move is triggered.
func (a *Axis) SetPosition(pos int32) error {
	if a.status.state != StateStopped {
		return ErrAxisMoving
	}
	a.position = pos
	a.target = pos
	return nil
}

// Status returns the motion status
func (a *Axis) Status() Status { return a.status }

// SPS returns the current step rate
func (a *Axis) SPS() uint32 { return a.sps }

// Limits returns the configured speed bounds
func (a *Axis) Limits() Limits {
	return Limits{
		MinSPS:           a.minSPS,
		MaxSPS:           a.maxSPS,
		AccelerationSPS:  a.accelSPS,
		ControllerDivide: a.ctrlPrescaler,
	}
}

// Snapshot copies the observable state
func (a *Axis) Snapshot() Snapshot {
	return Snapshot{
		Name:               a.name,
		Position:           a.position,
		Target:             a.target,
		Status:             a.status,
		SPS:                a.sps,
		BreakInitiationSPS: a.breakInitiationSPS,
	}
}

// EmergencyStop halts pulse generation immediately, drops the remaining
// move and resets the speed to minSPS. Position is kept as counted.
func (a *Axis) EmergencyStop() {
	a.timer.Stop()
	a.status = Stopped()
	a.target = a.position
	if a.sps != a.minSPS {
		a.sps = a.minSPS
		a.timer.SetStepFrequency(a.sps)
	}
	RecordEvent(EvtStop, a.id, uint32(a.position), a.sps)
}

// stepUnit is -1 when running backward, +1 otherwise
func (a *Axis) stepUnit() int32 {
	if a.status.state == StateRunningBackward {
		return -1
	}
	return 1
}

// stepsToTarget is the remaining distance in the direction of travel.
// Negative means the axis has passed the target.
func (a *Axis) stepsToTarget() int32 {
	return a.stepUnit() * (a.target - a.position)
}
