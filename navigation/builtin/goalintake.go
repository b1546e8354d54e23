package builtin

import (
	"context"

	"github.com/nav-stack/navcoordinator/navigation"
)

// validateAndNormalizeGoal implements spec.md §4.1's Validate + Normalize
// frame contract: reject malformed quaternions before any state change,
// then best-effort transform into the planning frame.
func (c *Coordinator) validateAndNormalizeGoal(ctx context.Context, goal navigation.Goal) (navigation.Goal, error) {
	if err := navigation.ValidateGoalOrientation(goal.Pose.Orientation); err != nil {
		return navigation.Goal{}, err
	}

	if c.transform == nil || goal.Pose.Frame == c.config.PlanningFrame {
		return goal, nil
	}

	transformed, err := c.transform.Transform(ctx, goal.Pose, c.config.PlanningFrame)
	if err != nil {
		// Best effort: keep the original frame, log a warning (every
		// failure is logged; there is no throttling), and let the control
		// loop proceed and retry on a later tick (spec.md §7
		// FrameTransformFailed, §9 "frame transforms").
		c.logger.Warnw("failed to transform goal into planning frame, keeping original frame",
			"targetFrame", c.config.PlanningFrame, "err", err)
		return goal, nil
	}
	goal.Pose = transformed
	return goal, nil
}

// acceptGoalLocked installs a validated goal as current, resetting
// supervisors and the recovery ladder as spec.md §4.1 requires both for a
// brand-new goal and for preemption of an in-flight one. Caller must hold
// c.plannerMu.
func (c *Coordinator) acceptGoalLocked(goal navigation.Goal) {
	now := c.clock.Now()

	c.currentGoal = &goal
	c.state = navigation.StatePlanning
	c.trigger = navigation.TriggerNone
	c.recoveryLadder.reset()
	c.plannerPatience.recordSuccess(now)
	c.controllerPatience.recordSuccess(now)
	c.oscillation.reset(goal.Pose.Position, now)
	c.tb.reset()
	c.cancelRequested = false

	c.publishZeroVelocity()
	c.publishCurrentGoal(goal.Pose)

	c.run = true
	c.cond.Broadcast()
}

// AcceptGoal submits a goal to the coordinator, either as a brand-new goal
// or, if one is already executing, as a transparent preemption of it
// (spec.md §4.1, §8 scenario 5: no terminal status is published for the
// preempted goal).
func (c *Coordinator) AcceptGoal(ctx context.Context, goal navigation.Goal) error {
	validated, err := c.validateAndNormalizeGoal(ctx, goal)
	if err != nil {
		return err
	}

	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()

	if c.plannerCostmap != nil {
		c.plannerCostmap.SetActive(true)
	}
	if c.controllerCostmap != nil {
		c.controllerCostmap.SetActive(true)
	}
	c.acceptGoalLocked(validated)
	return nil
}

// Cancel requests that the active goal (if any) stop with a Preempted
// terminal status (spec.md §4.1 Cancellation, §4.3).
func (c *Coordinator) Cancel() {
	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()
	if c.currentGoal == nil {
		return
	}
	c.cancelRequested = true
	c.cond.Broadcast()
}

// hasActiveGoal reports whether a goal is currently executing; used to
// enforce make_plan's exclusivity with the control loop (spec.md §4.4).
func (c *Coordinator) hasActiveGoal() bool {
	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()
	return c.currentGoal != nil
}
