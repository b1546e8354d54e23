// Package navigation defines the domain types, collaborator interfaces, and
// configuration for a move-base-style navigation coordinator: a process that
// drives a mobile base toward a goal pose by composing a global planner, a
// local planner, and a ladder of recovery behaviors.
package navigation

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a timestamped position and orientation in some named reference
// frame.
type Pose struct {
	Frame       string
	Position    r3.Vector
	Orientation quat.Number
	Stamp       time.Time
}

// String renders the pose for logs; not meant for wire serialization.
func (p Pose) String() string {
	return fmt.Sprintf("Pose{frame:%s pos:%v}", p.Frame, p.Position)
}

// quaternionNormSquared returns the squared norm of q.
func quaternionNormSquared(q quat.Number) float64 {
	return q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag
}

// quaternionFinite reports whether every component of q is finite.
func quaternionFinite(q quat.Number) bool {
	return !math.IsNaN(q.Real) && !math.IsInf(q.Real, 0) &&
		!math.IsNaN(q.Imag) && !math.IsInf(q.Imag, 0) &&
		!math.IsNaN(q.Jmag) && !math.IsInf(q.Jmag, 0) &&
		!math.IsNaN(q.Kmag) && !math.IsInf(q.Kmag, 0)
}

// minNormSquared below which a quaternion is considered degenerate, matching
// the original implementation's tolerance rather than a rounder number.
const minNormSquared = 1e-6

// verticalDotTolerance bounds how far a normalized quaternion's rotated
// vertical axis may deviate from true vertical. The distilled spec describes
// this as "tilt > ~0.057 rad"; the original checks the dot product directly,
// which is what we implement (see SPEC_FULL.md supplemented feature #3).
const verticalDotTolerance = 1e-3

// ValidateGoalOrientation implements the original move_base isQuaternionValid
// check: reject non-finite components, reject near-zero norm, then reject if
// the rotated vertical axis has drifted from true vertical beyond tolerance.
func ValidateGoalOrientation(q quat.Number) error {
	if !quaternionFinite(q) {
		return NewInvalidGoalError("quaternion has non-finite component")
	}
	normSq := quaternionNormSquared(q)
	if normSq < minNormSquared {
		return NewInvalidGoalError("quaternion norm is near zero")
	}
	n := math.Sqrt(normSq)
	normed := quat.Number{Real: q.Real / n, Imag: q.Imag / n, Jmag: q.Jmag / n, Kmag: q.Kmag / n}

	// Rotate the world vertical axis (0,0,1) by the quaternion and check how
	// close the result still is to vertical via q * k * q^-1, taking only the
	// z component of the resulting pure quaternion (dot with vertical).
	k := quat.Number{Kmag: 1}
	rotated := quat.Mul(quat.Mul(normed, k), quat.Conj(normed))
	dot := rotated.Kmag
	if math.Abs(dot-1) > verticalDotTolerance {
		return NewInvalidGoalError("goal quaternion is not near vertical")
	}
	return nil
}

// Goal is a target pose submitted to the coordinator, either directly via the
// action endpoint or wrapped from the bare-pose topic.
type Goal struct {
	ID      string
	Pose    Pose
	Stamp   time.Time
	Preempt bool // true if this goal was accepted while another was active
}

// Plan is an ordered, immutable sequence of timestamped poses in the
// planning frame. An empty plan signals planning failure.
type Plan struct {
	Frame string
	Poses []Pose
}

// Empty reports whether the plan carries no poses.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Poses) == 0
}

// Twist is a planar velocity command: linear x/y and angular z.
type Twist struct {
	LinearX  float64
	LinearY  float64
	AngularZ float64
}

// Zero is the zero-velocity twist, published whenever the coordinator halts
// motion (goal reached, preempted, entering CLEARING, shutdown).
var Zero = Twist{}

// CoordinatorState is the coordinator's finite, mutually exclusive state.
type CoordinatorState int

const (
	// StatePlanning: no usable plan yet, awaiting the planner worker.
	StatePlanning CoordinatorState = iota
	// StateControlling: current plan handed to the local planner, emitting
	// velocities.
	StateControlling
	// StateClearing: running a recovery behavior.
	StateClearing
)

func (s CoordinatorState) String() string {
	switch s {
	case StatePlanning:
		return "PLANNING"
	case StateControlling:
		return "CONTROLLING"
	case StateClearing:
		return "CLEARING"
	default:
		return "UNKNOWN"
	}
}

// RecoveryTrigger is a tagged variant recording why the coordinator entered
// StateClearing. It is a pure value, not an enum with associated bookkeeping:
// the abort message is a pure function of the trigger at the moment the
// ladder is exhausted (see SPEC_FULL.md / spec.md §9).
type RecoveryTrigger int

const (
	// TriggerNone means CLEARING has not been entered for the current goal.
	TriggerNone RecoveryTrigger = iota
	// TriggerPlanningFailed: the planner worker exhausted its patience/retries.
	TriggerPlanningFailed
	// TriggerControllingFailed: the local planner exhausted controller patience.
	TriggerControllingFailed
	// TriggerOscillation: the robot failed to make progress within the
	// oscillation timeout.
	TriggerOscillation
)

// AbortReason renders the user-facing reason string for an aborted goal,
// given the trigger active when the recovery ladder was exhausted.
func (t RecoveryTrigger) AbortReason() string {
	switch t {
	case TriggerPlanningFailed:
		return "failed to find a valid plan, even after executing recovery behaviors"
	case TriggerControllingFailed:
		return "failed to compute a valid velocity command, even after executing recovery behaviors"
	case TriggerOscillation:
		return "robot is oscillating; failed to make progress, even after executing recovery behaviors"
	default:
		return "aborted after exhausting recovery behaviors"
	}
}

// TerminalStatus is the outcome of a single goal execution.
type TerminalStatus int

const (
	// StatusSucceeded: the local planner reported the goal reached.
	StatusSucceeded TerminalStatus = iota
	// StatusAborted: the coordinator gave up; see the accompanying reason.
	StatusAborted
	// StatusPreempted: superseded by cancellation (not by a new goal, which
	// is transparent preemption per spec.md §8 scenario 5).
	StatusPreempted
)

func (s TerminalStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "Succeeded"
	case StatusAborted:
		return "Aborted"
	case StatusPreempted:
		return "Preempted"
	default:
		return "Unknown"
	}
}

// Result is published on goal completion.
type Result struct {
	Status TerminalStatus
	Reason string // non-empty only when Status == StatusAborted
}

// RecoveryStatus mirrors the original's recovery status message shape
// (SPEC_FULL.md supplemented feature #6).
type RecoveryStatus struct {
	Pose                  Pose
	CurrentRecoveryIndex  int
	TotalRecoveries       int
	RecoveryBehaviorName  string
}
