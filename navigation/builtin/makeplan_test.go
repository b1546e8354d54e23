package builtin

import (
	"context"
	"math"
	"testing"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/nav-stack/navcoordinator/logging"
	"github.com/nav-stack/navcoordinator/navigation"
	"github.com/nav-stack/navcoordinator/navigation/builtin/fake"
)

func newTestCoordinator(t *testing.T, gp *fake.GlobalPlanner, lp *fake.LocalPlanner) (*Coordinator, *clock.Mock) {
	t.Helper()
	registry := navigation.NewRegistry()
	registry.RegisterGlobalPlanner("gp", func(name string) (navigation.GlobalPlanner, error) { return gp, nil })
	registry.RegisterLocalPlanner("lp", func(name string) (navigation.LocalPlanner, error) { return lp, nil })

	cfg := navigation.DefaultConfig()
	cfg.BaseGlobalPlanner = "gp"
	cfg.BaseLocalPlanner = "lp"
	cfg.RecoveryBehaviorEnabled = false
	cfg.ControllerFrequency = 1000

	mockClock := clock.NewMock()
	poseSource := &fake.PoseSource{}
	coordinator, err := NewCoordinator(context.Background(), cfg, registry, logging.NewTestLogger(t), mockClock, Deps{
		PoseSource: poseSource,
	})
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { coordinator.Close(context.Background()) })
	return coordinator, mockClock
}

func TestMakePlanExactGoalSucceeds(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	plan, err := coordinator.MakePlan(context.Background(), MakePlanRequest{
		Start: &navigation.Pose{Frame: "map"},
		Goal:  navigation.Pose{Frame: "map"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plan.Empty(), test.ShouldBeFalse)
}

func TestMakePlanRefusedWithActiveGoal(t *testing.T) {
	gp := &fake.GlobalPlanner{}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)

	err := coordinator.AcceptGoal(context.Background(), navigation.Goal{ID: "g1", Pose: navigation.Pose{Orientation: quat.Number{Real: 1}}})
	test.That(t, err, test.ShouldBeNil)

	_, err = coordinator.MakePlan(context.Background(), MakePlanRequest{Start: &navigation.Pose{}, Goal: navigation.Pose{}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, navigation.IsInvalidGoal(err), test.ShouldBeTrue)
}

func TestSearchOffsetsFindsNearbyReachableGoal(t *testing.T) {
	gp := &fake.GlobalPlanner{
		MakePlanFunc: func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
			// Only the offset (0.3, 0) is reachable; everything else,
			// including the unreachable exact goal, fails. The search steps
			// by 0.1*3.0, which is not exactly 0.3 in floating point.
			if math.Abs(goal.Position.X-0.3) < 1e-9 && goal.Position.Y == 0 {
				return &navigation.Plan{Frame: "map", Poses: []navigation.Pose{start, goal}}, true, nil
			}
			return nil, false, nil
		},
	}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)
	coordinator.costmapResolutionOverride = 0.1 // searchIncrement = 0.3

	plan, found := coordinator.searchOffsets(context.Background(), navigation.Pose{}, navigation.Pose{}, 0.6)
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, plan.Empty(), test.ShouldBeFalse)
}

func TestSearchOffsetsExhaustsWithoutAMatch(t *testing.T) {
	gp := &fake.GlobalPlanner{
		MakePlanFunc: func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
			return nil, false, nil
		},
	}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)
	coordinator.costmapResolutionOverride = 0.1

	_, found := coordinator.searchOffsets(context.Background(), navigation.Pose{}, navigation.Pose{}, 0.6)
	test.That(t, found, test.ShouldBeFalse)
}

// TestSearchOffsetsOutermostRingCanBeSkipped pins down Open Question #1: when
// tolerance isn't an exact multiple of searchIncrement, a goal reachable only
// at the outermost ring is never found, because that ring's maxOffset value
// exceeds tolerance and the loop stops one increment short. This is the
// preserved-not-fixed behavior documented on searchOffsets.
func TestSearchOffsetsOutermostRingCanBeSkipped(t *testing.T) {
	gp := &fake.GlobalPlanner{
		MakePlanFunc: func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
			if goal.Position.X == 0.5 && goal.Position.Y == 0 {
				return &navigation.Plan{Frame: "map", Poses: []navigation.Pose{start, goal}}, true, nil
			}
			return nil, false, nil
		},
	}
	lp := &fake.LocalPlanner{}
	coordinator, _ := newTestCoordinator(t, gp, lp)
	coordinator.costmapResolutionOverride = 0.1 // searchIncrement = 0.3

	// tolerance=0.5 is not a multiple of 0.3, so the maxOffset loop only
	// reaches 0.3 (0.6 > 0.5 stops it); a goal only reachable at offset 0.5
	// is never tried.
	_, found := coordinator.searchOffsets(context.Background(), navigation.Pose{}, navigation.Pose{}, 0.5)
	test.That(t, found, test.ShouldBeFalse)
}
