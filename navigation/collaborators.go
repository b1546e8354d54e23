package navigation

import "context"

// GlobalPlanner computes a path from a start pose to a goal pose. It must be
// safe to call with the coordinator's planner mutex released, since planning
// may block for a non-trivial time (spec.md §5).
type GlobalPlanner interface {
	// MakePlan returns a plan from start to goal, or ok=false if no plan
	// could be found. An error is reserved for collaborator-internal faults,
	// not ordinary "unreachable goal" outcomes.
	MakePlan(ctx context.Context, start, goal Pose) (plan *Plan, ok bool, err error)
}

// LocalPlanner (trajectory controller) turns an accepted plan into velocity
// commands and reports goal completion.
type LocalPlanner interface {
	// SetPlan installs a new plan. ok=false means the plan was rejected
	// (e.g. it is kinematically infeasible); the control loop aborts the
	// goal with LocalPlanRejected in that case.
	SetPlan(ctx context.Context, plan *Plan) (ok bool, err error)
	// ComputeVelocity returns the next velocity command given the robot's
	// current pose. ok=false is a transient failure to be retried under
	// controller patience.
	ComputeVelocity(ctx context.Context, pose Pose) (twist Twist, ok bool, err error)
	// IsGoalReached reports whether the current plan has been completed.
	IsGoalReached() bool
}

// RecoveryBehavior is a side-effecting routine that attempts to unblock a
// stuck robot. It may block for seconds and mutates robot/costmap state.
type RecoveryBehavior interface {
	Name() string
	Run(ctx context.Context) error
}

// Costmap is the subset of costmap behavior the coordinator depends on.
// Maintenance of the map itself (inflation, sensor fusion) is out of scope
// (spec.md §1).
type Costmap interface {
	// IsCurrent reports whether the costmap's sensor data is fresh enough to
	// plan or control safely (spec.md §7 CostmapStale).
	IsCurrent() bool
	// ResetLayers clears every configured layer, used by clear_costmaps and
	// by conservative/aggressive recovery behaviors.
	ResetLayers()
	// SetConvexPolygonCost marks an area free, used by make_plan to carve a
	// window around the start pose before planning.
	SetConvexPolygonCost(points []Pose, cost int)
	// SetActive starts/stops costmap maintenance. Carried over from the
	// original's shutdown_costmaps option (SPEC_FULL.md supplemented
	// feature #10): the coordinator calls SetActive(false) on terminal
	// outcomes when configured to do so, and SetActive(true) on accepting a
	// new goal.
	SetActive(active bool)
}

// TransformService resolves a pose from one reference frame into another.
// A lookup that succeeds but whose underlying transform is older than the
// service's own tolerance must be treated as unavailable, not stale-but-ok
// (SPEC_FULL.md supplemented feature #4) — that policy lives on the
// implementation of this interface, not in the coordinator.
type TransformService interface {
	Transform(ctx context.Context, pose Pose, targetFrame string) (Pose, error)
}

// FreeCost is the cost value that marks a cell as obstacle-free, used by
// SetConvexPolygonCost.
const FreeCost = 0

// RobotPoseSource reads the robot's current pose in the global frame.
// Grounded on the original's getRobotPose, which folds a transform-tolerance
// staleness check into the lookup itself (SPEC_FULL.md supplemented
// feature #4): a lookup that succeeds but is older than the implementation's
// configured tolerance must return PoseUnavailableError, not a stale pose.
type RobotPoseSource interface {
	CurrentPose(ctx context.Context) (Pose, error)
}

// Rotator is the narrow capability the default in-place rotation recovery
// behavior needs from the local planner/base driver: spin in place until
// interrupted or a full turn completes. Kept separate from LocalPlanner
// because not every deployment's local planner exposes it directly.
type Rotator interface {
	RotateInPlace(ctx context.Context) error
}
