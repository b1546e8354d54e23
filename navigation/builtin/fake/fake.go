// Package fake provides injectable fakes for the navigation coordinator's
// collaborator interfaces, grounded on testutils/inject/base.go's
// override-with-fallback pattern: each fake embeds a working default
// implementation and exposes *Func fields tests can set to override
// individual methods.
package fake

import (
	"context"
	"sync"

	"github.com/nav-stack/navcoordinator/navigation"
)

// GlobalPlanner is an injectable navigation.GlobalPlanner. With no
// MakePlanFunc set it always returns a two-pose plan straight from start to
// goal.
type GlobalPlanner struct {
	MakePlanFunc func(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error)
}

func (p *GlobalPlanner) MakePlan(ctx context.Context, start, goal navigation.Pose) (*navigation.Plan, bool, error) {
	if p.MakePlanFunc == nil {
		return &navigation.Plan{Frame: goal.Frame, Poses: []navigation.Pose{start, goal}}, true, nil
	}
	return p.MakePlanFunc(ctx, start, goal)
}

// LocalPlanner is an injectable navigation.LocalPlanner.
type LocalPlanner struct {
	SetPlanFunc         func(ctx context.Context, plan *navigation.Plan) (bool, error)
	ComputeVelocityFunc func(ctx context.Context, pose navigation.Pose) (navigation.Twist, bool, error)
	IsGoalReachedFunc   func() bool

	mu          sync.Mutex
	plan        *navigation.Plan
	goalReached bool
}

func (p *LocalPlanner) SetPlan(ctx context.Context, plan *navigation.Plan) (bool, error) {
	if p.SetPlanFunc == nil {
		p.mu.Lock()
		p.plan = plan
		p.goalReached = false
		p.mu.Unlock()
		return true, nil
	}
	return p.SetPlanFunc(ctx, plan)
}

func (p *LocalPlanner) ComputeVelocity(ctx context.Context, pose navigation.Pose) (navigation.Twist, bool, error) {
	if p.ComputeVelocityFunc == nil {
		p.mu.Lock()
		p.goalReached = true
		p.mu.Unlock()
		return navigation.Twist{LinearX: 0.5}, true, nil
	}
	return p.ComputeVelocityFunc(ctx, pose)
}

func (p *LocalPlanner) IsGoalReached() bool {
	if p.IsGoalReachedFunc == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.goalReached
	}
	return p.IsGoalReachedFunc()
}

// RecoveryBehavior is an injectable navigation.RecoveryBehavior.
type RecoveryBehavior struct {
	NameVal string
	RunFunc func(ctx context.Context) error
}

func (r *RecoveryBehavior) Name() string {
	return r.NameVal
}

func (r *RecoveryBehavior) Run(ctx context.Context) error {
	if r.RunFunc == nil {
		return nil
	}
	return r.RunFunc(ctx)
}

// Costmap is an injectable navigation.Costmap.
type Costmap struct {
	IsCurrentFunc func() bool

	mu     sync.Mutex
	active bool
}

func (c *Costmap) IsCurrent() bool {
	if c.IsCurrentFunc == nil {
		return true
	}
	return c.IsCurrentFunc()
}

func (c *Costmap) ResetLayers() {}

func (c *Costmap) SetConvexPolygonCost(points []navigation.Pose, cost int) {}

func (c *Costmap) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

func (c *Costmap) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// TransformService is an injectable navigation.TransformService. With no
// TransformFunc set it returns the pose unchanged with the target frame
// substituted in.
type TransformService struct {
	TransformFunc func(ctx context.Context, pose navigation.Pose, targetFrame string) (navigation.Pose, error)
}

func (t *TransformService) Transform(ctx context.Context, pose navigation.Pose, targetFrame string) (navigation.Pose, error) {
	if t.TransformFunc == nil {
		pose.Frame = targetFrame
		return pose, nil
	}
	return t.TransformFunc(ctx, pose, targetFrame)
}

// PoseSource is an injectable navigation.RobotPoseSource.
type PoseSource struct {
	CurrentPoseFunc func(ctx context.Context) (navigation.Pose, error)

	mu   sync.Mutex
	pose navigation.Pose
}

func (p *PoseSource) CurrentPose(ctx context.Context) (navigation.Pose, error) {
	if p.CurrentPoseFunc == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.pose, nil
	}
	return p.CurrentPoseFunc(ctx)
}

// SetPose updates the pose CurrentPose returns when no CurrentPoseFunc is
// set, letting a test move the "robot" between ticks.
func (p *PoseSource) SetPose(pose navigation.Pose) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pose = pose
}
