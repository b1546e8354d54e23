package builtin

import (
	"context"
	"math"
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"
	"gonum.org/v1/gonum/num/quat"

	"github.com/nav-stack/navcoordinator/navigation"
	"github.com/nav-stack/navcoordinator/navigation/builtin/fake"
)

// TestHappyPathReachesGoal drives scenario 1 from spec.md §8: a goal that
// plans and controls cleanly reaches StatusSucceeded.
func TestHappyPathReachesGoal(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{
		IsGoalReachedFunc: func() bool { return true },
	}
	coordinator, mockClock := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertionWithSleep(t, time.Millisecond, 200, func(tb testing.TB) {
		test.That(tb, coordinator.State(), test.ShouldEqual, navigation.StateControlling)
	})

	mockClock.Add(coordinator.tickPeriod())

	var result navigation.Result
	select {
	case result = <-coordinator.ResultOut():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a result")
	}
	test.That(t, result.Status, test.ShouldEqual, navigation.StatusSucceeded)
}

// TestInvalidGoalNeverStartsExecution covers spec.md §8's invalid-goal
// boundary case: no state change, no plan request issued.
func TestInvalidGoalNeverStartsExecution(t *testing.T) {
	gp := &fake.GlobalPlanner{
		MakePlanFunc: func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
			t.Fatal("planner should never be invoked for an invalid goal")
			return nil, false, nil
		},
	}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{
		ID:   "bad",
		Pose: navigation.Pose{Orientation: quat.Number{Real: math.NaN()}},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, coordinator.State(), test.ShouldEqual, navigation.StatePlanning)
}

// TestPlannerPatienceExhaustionEntersClearing covers scenario 3: a planning
// failure once plannerPatience (zero here, so the first failure) has run out
// escalates to CLEARING with PLANNING_FAILED, and an exhausted ladder (none
// configured here) aborts.
func TestPlannerPatienceExhaustionEntersClearing(t *testing.T) {
	gp := &fake.GlobalPlanner{
		MakePlanFunc: func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
			return nil, false, nil
		},
	}
	lp := &fake.LocalPlanner{}
	coordinator, mockClock := newTestCoordinator(t, gp, lp)
	coordinator.plannerPatience = newPatienceSupervisor(0, -1, mockClock.Now())

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertionWithSleep(t, time.Millisecond, 200, func(tb testing.TB) {
		test.That(tb, coordinator.State(), test.ShouldEqual, navigation.StateClearing)
	})
	mockClock.Add(coordinator.tickPeriod())

	var result navigation.Result
	select {
	case result = <-coordinator.ResultOut():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a result")
	}
	test.That(t, result.Status, test.ShouldEqual, navigation.StatusAborted)
	test.That(t, result.Reason, test.ShouldContainSubstring, "plan")
}

// TestCancelPreemptsWithPreemptedStatus covers scenario 6: an explicit
// cancel during CONTROLLING yields StatusPreempted, not StatusAborted.
func TestCancelPreemptsWithPreemptedStatus(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{
		IsGoalReachedFunc: func() bool { return false },
	}
	coordinator, mockClock := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertionWithSleep(t, time.Millisecond, 200, func(tb testing.TB) {
		test.That(tb, coordinator.State(), test.ShouldEqual, navigation.StateControlling)
	})

	coordinator.Cancel()
	mockClock.Add(coordinator.tickPeriod())

	var result navigation.Result
	select {
	case result = <-coordinator.ResultOut():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a result")
	}
	test.That(t, result.Status, test.ShouldEqual, navigation.StatusPreempted)
}

// TestPreemptionBySecondGoalPublishesNoResultForTheFirst covers scenario 5:
// accepting a new goal while one is in flight is a transparent preemption,
// with no terminal status published for the superseded goal.
func TestPreemptionBySecondGoalPublishesNoResultForTheFirst(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{
		IsGoalReachedFunc: func() bool { return false },
	}
	coordinator, mockClock := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertionWithSleep(t, time.Millisecond, 200, func(tb testing.TB) {
		test.That(tb, coordinator.State(), test.ShouldEqual, navigation.StateControlling)
	})

	err = coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g2", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	mockClock.Add(coordinator.tickPeriod())

	select {
	case result := <-coordinator.ResultOut():
		t.Fatalf("expected no terminal status for the preempted goal, got %+v", result)
	case <-time.After(100 * time.Millisecond):
	}
}
