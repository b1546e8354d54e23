package builtin

import (
	"context"
	"time"

	"github.com/nav-stack/navcoordinator/navigation"
)

// plannerWorkerLoop is the single background planning thread described in
// spec.md §4.2. It is started once at construction time and runs for the
// coordinator's lifetime, suspending on c.cond between goals.
//
// The predicate (run && goal present && !shutdown) is re-checked after every
// wake to tolerate spurious wakeups and coalesced signals, per spec.md §9.
func (c *Coordinator) plannerWorkerLoop(ctx context.Context) {
	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()

	for {
		for !(c.run && c.currentGoal != nil) && !c.shutdown {
			c.cond.Wait()
		}
		if c.shutdown {
			return
		}

		goal := *c.currentGoal
		iterationStart := c.clock.Now()

		c.plannerMu.Unlock()
		plan, ok, err := c.planOnce(ctx, goal)
		c.plannerMu.Lock()

		if c.shutdown {
			return
		}
		// Discard the result if the goal changed while we were planning
		// (preemption raced us); the new goal's own worker iteration will
		// supersede this one (spec.md §5 cancellation semantics).
		if c.currentGoal == nil || c.currentGoal.ID != goal.ID {
			continue
		}

		if err == nil && ok && !plan.Empty() {
			c.onPlanSucceeded(plan)
		} else {
			c.onPlanFailed()
		}

		if c.config.PlannerFrequency <= 0 {
			// One-shot per goal: sleep until a new goal or a forced replan
			// wakes us again (spec.md §4.2, §8 boundary case).
			c.run = false
			continue
		}

		c.scheduleCadenceWake(iterationStart)
	}
}

// planOnce asks the global planner for a plan to the current goal from the
// robot's present pose. Called with c.plannerMu released, since planning may
// block for a non-trivial time (spec.md §5).
func (c *Coordinator) planOnce(ctx context.Context, goal navigation.Goal) (*navigation.Plan, bool, error) {
	start, err := c.currentRobotPose(ctx)
	if err != nil {
		return nil, false, err
	}
	return c.globalPlanner.MakePlan(ctx, start, goal.Pose)
}

// onPlanSucceeded implements the success path of spec.md §4.2: publish into
// the triple-buffer, record success, and (only if still in PLANNING; never
// override CLEARING) transition to CONTROLLING. Caller holds c.plannerMu.
func (c *Coordinator) onPlanSucceeded(plan *navigation.Plan) {
	now := c.clock.Now()
	c.tb.publish(plan)
	c.plannerPatience.recordSuccess(now)
	if c.state == navigation.StatePlanning {
		c.state = navigation.StateControlling
	}
}

// onPlanFailed implements the failure path of spec.md §4.2: bump the retry
// counter, and if patience is exhausted while still PLANNING, escalate to
// CLEARING(PLANNING_FAILED). Caller holds c.plannerMu.
func (c *Coordinator) onPlanFailed() {
	c.plannerPatience.recordFailure()
	if c.state != navigation.StatePlanning {
		return
	}
	now := c.clock.Now()
	if c.plannerPatience.exhausted(now) {
		c.state = navigation.StateClearing
		c.trigger = navigation.TriggerPlanningFailed
		c.publishZeroVelocity()
		c.run = false
	}
}

// scheduleCadenceWake implements SPEC_FULL.md supplemented feature #1: when
// planner_frequency > 0, a one-shot timer fires after the remaining slice of
// 1/frequency since iterationStart and pokes the same condition variable the
// control loop and goal intake use. Caller holds c.plannerMu.
func (c *Coordinator) scheduleCadenceWake(iterationStart time.Time) {
	period := time.Duration(float64(time.Second) / c.config.PlannerFrequency)
	elapsed := c.clock.Now().Sub(iterationStart)
	remaining := period - elapsed
	if remaining < 0 {
		remaining = 0
	}
	c.clock.AfterFunc(remaining, func() {
		c.plannerMu.Lock()
		defer c.plannerMu.Unlock()
		c.cond.Broadcast()
	})
}
