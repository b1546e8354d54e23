package builtin

import (
	"context"
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/nav-stack/navcoordinator/navigation"
	"github.com/nav-stack/navcoordinator/navigation/builtin/fake"
)

func TestAcceptGoalRejectsInvalidOrientation(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{
		ID:   "bad",
		Pose: navigation.Pose{Orientation: quat.Number{Real: math.NaN()}},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, navigation.IsInvalidGoal(err), test.ShouldBeTrue)
	test.That(t, coordinator.hasActiveGoal(), test.ShouldBeFalse)
}

func TestAcceptGoalPreemptsInFlightGoal(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	err = coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g2", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	coordinator.plannerMu.Lock()
	currentID := coordinator.currentGoal.ID
	coordinator.plannerMu.Unlock()
	test.That(t, currentID, test.ShouldEqual, "g2")
}

func TestCancelWithNoActiveGoalIsANoop(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	coordinator.Cancel()
	test.That(t, coordinator.hasActiveGoal(), test.ShouldBeFalse)
}

func TestAcceptGoalTransformsIntoPlanningFrame(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)
	coordinator.transform = &fake.TransformService{}

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{
		ID:   "g1",
		Pose: navigation.Pose{Frame: "camera", Orientation: quat.Number{Real: 1}},
	})
	test.That(t, err, test.ShouldBeNil)

	coordinator.plannerMu.Lock()
	frame := coordinator.currentGoal.Pose.Frame
	coordinator.plannerMu.Unlock()
	test.That(t, frame, test.ShouldEqual, coordinator.config.PlanningFrame)
}
