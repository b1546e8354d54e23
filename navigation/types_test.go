package navigation

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestValidateGoalOrientationIdentity(t *testing.T) {
	err := ValidateGoalOrientation(quat.Number{Real: 1})
	test.That(t, err, test.ShouldBeNil)
}

func TestValidateGoalOrientationNonFinite(t *testing.T) {
	err := ValidateGoalOrientation(quat.Number{Real: math.NaN()})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsInvalidGoal(err), test.ShouldBeTrue)
}

func TestValidateGoalOrientationNearZeroNorm(t *testing.T) {
	err := ValidateGoalOrientation(quat.Number{Real: 1e-9})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsInvalidGoal(err), test.ShouldBeTrue)
}

func TestValidateGoalOrientationTilted(t *testing.T) {
	// A 90-degree rotation about the X axis tips the vertical axis onto the
	// horizontal plane, well past the tolerance.
	half := math.Pi / 4
	q := quat.Number{Real: math.Cos(half), Imag: math.Sin(half)}
	err := ValidateGoalOrientation(q)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidateGoalOrientationPureYaw(t *testing.T) {
	// A pure yaw (rotation about Z, the vertical axis) never tilts the
	// vertical axis away from itself, regardless of angle.
	half := math.Pi / 3
	q := quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
	err := ValidateGoalOrientation(q)
	test.That(t, err, test.ShouldBeNil)
}

func TestPlanEmpty(t *testing.T) {
	var nilPlan *Plan
	test.That(t, nilPlan.Empty(), test.ShouldBeTrue)

	empty := &Plan{}
	test.That(t, empty.Empty(), test.ShouldBeTrue)

	nonEmpty := &Plan{Poses: []Pose{{}}}
	test.That(t, nonEmpty.Empty(), test.ShouldBeFalse)
}

func TestRecoveryTriggerAbortReason(t *testing.T) {
	test.That(t, TriggerPlanningFailed.AbortReason(), test.ShouldContainSubstring, "plan")
	test.That(t, TriggerControllingFailed.AbortReason(), test.ShouldContainSubstring, "velocity")
	test.That(t, TriggerOscillation.AbortReason(), test.ShouldContainSubstring, "oscillat")
	test.That(t, TriggerNone.AbortReason(), test.ShouldContainSubstring, "recovery")
}

func TestCoordinatorStateString(t *testing.T) {
	test.That(t, StatePlanning.String(), test.ShouldEqual, "PLANNING")
	test.That(t, StateControlling.String(), test.ShouldEqual, "CONTROLLING")
	test.That(t, StateClearing.String(), test.ShouldEqual, "CLEARING")
}
