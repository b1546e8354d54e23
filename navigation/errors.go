package navigation

import "github.com/pkg/errors"

// Error kinds named after spec.md §7. Each is a small constructor returning
// a plain error, matching the teacher's convention of functions like
// resource.NewNotFoundError rather than custom exception hierarchies.

// InvalidGoalError is returned by goal intake validation.
type InvalidGoalError struct {
	Reason string
}

func (e *InvalidGoalError) Error() string {
	return "invalid goal: " + e.Reason
}

// NewInvalidGoalError constructs an InvalidGoalError.
func NewInvalidGoalError(reason string) error {
	return &InvalidGoalError{Reason: reason}
}

// IsInvalidGoal reports whether err is (or wraps) an InvalidGoalError.
func IsInvalidGoal(err error) bool {
	var e *InvalidGoalError
	return errors.As(err, &e)
}

// FrameTransformError records a best-effort transform failure. Goal intake
// and the control loop treat transform failures as recoverable: they keep
// the original frame, log a warning on every failure (without throttling),
// and continue (spec.md §7).
type FrameTransformError struct {
	TargetFrame string
	Cause       error
}

func (e *FrameTransformError) Error() string {
	return "transform to " + e.TargetFrame + " failed: " + e.Cause.Error()
}

func (e *FrameTransformError) Unwrap() error { return e.Cause }

// NewFrameTransformError constructs a FrameTransformError.
func NewFrameTransformError(targetFrame string, cause error) error {
	return &FrameTransformError{TargetFrame: targetFrame, Cause: cause}
}

// PoseUnavailableError means the robot pose could not be read this tick; the
// control loop skips the tick without changing state.
type PoseUnavailableError struct {
	Cause error
}

func (e *PoseUnavailableError) Error() string {
	if e.Cause == nil {
		return "robot pose unavailable"
	}
	return "robot pose unavailable: " + e.Cause.Error()
}

func (e *PoseUnavailableError) Unwrap() error { return e.Cause }

// NewPoseUnavailableError constructs a PoseUnavailableError.
func NewPoseUnavailableError(cause error) error {
	return &PoseUnavailableError{Cause: cause}
}

// CollaboratorLoadError is returned by hot-swap construction failures; the
// caller rolls back to the previous collaborator and keeps running.
type CollaboratorLoadError struct {
	Kind string // "global_planner", "local_planner", "recovery_behavior"
	Name string
	Cause error
}

func (e *CollaboratorLoadError) Error() string {
	return errors.Wrapf(e.Cause, "failed to construct %s %q", e.Kind, e.Name).Error()
}

func (e *CollaboratorLoadError) Unwrap() error { return e.Cause }

// NewCollaboratorLoadError constructs a CollaboratorLoadError.
func NewCollaboratorLoadError(kind, name string, cause error) error {
	return &CollaboratorLoadError{Kind: kind, Name: name, Cause: cause}
}
