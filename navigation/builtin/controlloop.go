package builtin

import (
	"context"
	"time"

	"github.com/nav-stack/navcoordinator/navigation"
)

// controlLoop is the persistent per-goal driver described in spec.md §4.3.
// It runs for the coordinator's lifetime as a single goroutine, alternating
// between waiting for a goal to become current and ticking at
// controller_frequency until that goal reaches a terminal outcome.
func (c *Coordinator) controlLoop(ctx context.Context) {
	for {
		c.plannerMu.Lock()
		for c.currentGoal == nil && !c.shutdown {
			c.cond.Wait()
		}
		if c.shutdown {
			c.plannerMu.Unlock()
			return
		}
		goalID := c.currentGoal.ID
		c.plannerMu.Unlock()

		result := c.runGoalToCompletion(ctx, goalID)
		if result != nil {
			c.publishResult(*result)
		}
	}
}

// runGoalToCompletion ticks the state machine until a terminal outcome is
// reached for the goal identified by goalID, or nil if the goal was
// superseded by preemption before reaching one (in which case no terminal
// status is published, per spec.md §8 scenario 5).
func (c *Coordinator) runGoalToCompletion(ctx context.Context, goalID string) *navigation.Result {
	ticker := c.clock.Ticker(c.tickPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		c.plannerMu.Lock()
		if c.currentGoal == nil || c.currentGoal.ID != goalID {
			// Preempted by a newer goal; that goal's own loop iteration
			// owns completion now.
			c.plannerMu.Unlock()
			return nil
		}

		if newPeriod := c.tickPeriod(); newPeriod != c.lastTickPeriod {
			ticker.Reset(newPeriod)
			c.lastTickPeriod = newPeriod
		}

		if c.cancelRequested {
			c.resetForTerminalLocked()
			c.plannerMu.Unlock()
			return &navigation.Result{Status: navigation.StatusPreempted}
		}

		tickResult, terminal := c.tickLocked(ctx)
		c.plannerMu.Unlock()

		if terminal != nil {
			return terminal
		}
		_ = tickResult

		if terminal := c.checkClearingExhausted(); terminal != nil {
			return terminal
		}
	}
}

// tickResult carries diagnostic-only information out of a single tick.
type tickResult struct {
	rateMissed bool
}

// tickLocked runs one iteration of the control loop tick (spec.md §4.3
// steps 4-9). Caller holds c.plannerMu for the duration; the lock is
// released internally around any collaborator call that may block per
// spec.md §5, and re-acquired before returning.
func (c *Coordinator) tickLocked(ctx context.Context) (tickResult, *navigation.Result) {
	tickStart := c.clock.Now()

	c.reTransformGoalFrameLocked(ctx)

	c.plannerMu.Unlock()
	pose, poseErr := c.currentRobotPose(ctx)
	c.plannerMu.Lock()

	if poseErr != nil {
		c.logger.Warnw("robot pose unavailable this tick", "err", poseErr)
		return tickResult{}, nil
	}
	c.publishFeedback(pose)

	now := c.clock.Now()

	// Oscillation check (step 5).
	if c.oscillation.checkProgress(poseVector(pose), now) {
		if c.trigger == navigation.TriggerOscillation {
			c.recoveryLadder.reset()
		}
	}

	// Sensor freshness (step 6).
	if c.controllerCostmap != nil && !c.controllerCostmap.IsCurrent() {
		c.publishZeroVelocity()
		return tickResult{}, nil
	}

	// Triple-buffer handoff (step 7).
	if plan, fresh := c.tb.takeIfFresh(); fresh {
		ok, err := c.localPlanner.SetPlan(ctx, plan)
		if err != nil || !ok {
			c.resetForTerminalLocked()
			return tickResult{}, &navigation.Result{
				Status: navigation.StatusAborted,
				Reason: "local planner rejected plan",
			}
		}
		if c.trigger == navigation.TriggerPlanningFailed {
			c.recoveryLadder.reset()
		}
	}

	// State machine branch (step 8).
	switch c.state {
	case navigation.StatePlanning:
		c.run = true
		c.cond.Broadcast()

	case navigation.StateControlling:
		if term := c.tickControlling(ctx, pose, now); term != nil {
			return tickResult{}, term
		}

	case navigation.StateClearing:
		c.tickClearing(ctx, pose)
	}

	// Rate-miss diagnostic (step 9).
	overran := c.state == navigation.StateControlling && c.clock.Now().Sub(tickStart) > c.tickPeriod()
	if overran {
		c.logger.Debugw("control loop tick overran budget", "period", c.tickPeriod())
	}
	return tickResult{rateMissed: overran}, nil
}

// reTransformGoalFrameLocked handles the case where the active goal's frame
// no longer matches the live planning frame — because the intake transform
// failed and fell back to the original frame, or because Reconfigure swapped
// in a new planning frame while a goal was in flight — by re-transforming the
// goal and resetting supervisors exactly as acceptGoalLocked does for a
// preempting goal. Caller holds c.plannerMu; released around the transform
// call, which may block.
func (c *Coordinator) reTransformGoalFrameLocked(ctx context.Context) {
	if c.currentGoal == nil || c.transform == nil {
		return
	}
	if c.currentGoal.Pose.Frame == c.config.PlanningFrame {
		return
	}

	goalID := c.currentGoal.ID
	pose := c.currentGoal.Pose

	c.plannerMu.Unlock()
	transformed, err := c.transform.Transform(ctx, pose, c.config.PlanningFrame)
	c.plannerMu.Lock()

	if c.currentGoal == nil || c.currentGoal.ID != goalID {
		// Preempted or completed while the lock was released.
		return
	}
	if err != nil {
		c.logger.Warnw("failed to re-transform goal after planning frame change, keeping original frame",
			"targetFrame", c.config.PlanningFrame, "err", err)
		return
	}

	c.currentGoal.Pose = transformed

	now := c.clock.Now()
	c.state = navigation.StatePlanning
	c.trigger = navigation.TriggerNone
	c.recoveryLadder.reset()
	c.plannerPatience.recordSuccess(now)
	c.controllerPatience.recordSuccess(now)
	c.oscillation.reset(transformed.Position, now)

	c.publishCurrentGoal(transformed)
	c.run = true
	c.cond.Broadcast()
}

// tickControlling implements the CONTROLLING branch of spec.md §4.3's state
// machine transitions. Caller holds c.plannerMu; released around the local
// planner calls, which may block.
func (c *Coordinator) tickControlling(ctx context.Context, pose navigation.Pose, now time.Time) *navigation.Result {
	if c.localPlanner.IsGoalReached() {
		c.resetForTerminalLocked()
		return &navigation.Result{Status: navigation.StatusSucceeded}
	}

	if c.config.OscillationTimeout > 0 && c.oscillation.expired(now) {
		c.publishZeroVelocity()
		c.state = navigation.StateClearing
		c.trigger = navigation.TriggerOscillation
		return nil
	}

	c.plannerMu.Unlock()
	twist, ok, err := c.localPlanner.ComputeVelocity(ctx, pose)
	c.plannerMu.Lock()

	if err == nil && ok {
		c.publishVelocity(twist)
		c.controllerPatience.recordSuccess(now)
		if c.trigger == navigation.TriggerControllingFailed {
			c.recoveryLadder.reset()
		}
		return nil
	}

	if c.controllerPatience.exhausted(now) {
		c.publishZeroVelocity()
		c.state = navigation.StateClearing
		c.trigger = navigation.TriggerControllingFailed
		return nil
	}

	// Force a fresh plan.
	c.state = navigation.StatePlanning
	c.plannerPatience.recordSuccess(now)
	c.publishZeroVelocity()
	c.run = true
	c.cond.Broadcast()
	return nil
}

// tickClearing implements the CLEARING branch of spec.md §4.3. Caller holds
// c.plannerMu; released around the recovery behavior call, which may block
// for seconds.
func (c *Coordinator) tickClearing(ctx context.Context, pose navigation.Pose) {
	if c.config.RecoveryBehaviorEnabled && !c.recoveryLadder.exhausted() {
		status := c.recoveryLadder.status(pose)
		c.publishRecoveryStatus(status)

		c.plannerMu.Unlock()
		err := c.recoveryLadder.advance(ctx, c.logger)
		c.plannerMu.Lock()

		if err != nil {
			c.logger.Warnw("recovery behavior failed", "err", err)
		}

		now := c.clock.Now()
		c.oscillation.reset(poseVector(pose), now)
		c.plannerPatience.recordSuccess(now)
		c.state = navigation.StatePlanning
	}
	// Exhaustion is handled by the caller via checkClearingExhausted, invoked
	// from runGoalToCompletion after tickLocked returns, so that an abort can
	// be surfaced as a terminal Result without threading it back up through
	// tickLocked's non-terminal branches. See checkClearingExhausted.
}

// checkClearingExhausted is called after tickLocked when the state remains
// CLEARING with the ladder exhausted (or recoveries disabled): the goal
// aborts with a reason derived from the current trigger (spec.md §4.3 "abort
// the goal; the abort reason is derived from the current recovery trigger").
func (c *Coordinator) checkClearingExhausted() *navigation.Result {
	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()
	if c.state != navigation.StateClearing {
		return nil
	}
	if c.config.RecoveryBehaviorEnabled && !c.recoveryLadder.exhausted() {
		return nil
	}
	reason := c.trigger.AbortReason()
	c.resetForTerminalLocked()
	return &navigation.Result{Status: navigation.StatusAborted, Reason: reason}
}

// resetForTerminalLocked implements the shared cleanup spec.md §4.3
// specifies for every terminal outcome: stop the planner worker, publish
// zero velocity, and optionally shut down costmaps. Caller holds
// c.plannerMu.
func (c *Coordinator) resetForTerminalLocked() {
	c.stopWorkerLocked()
	c.publishZeroVelocity()
	if c.config.ShutdownCostmaps {
		if c.plannerCostmap != nil {
			c.plannerCostmap.SetActive(false)
		}
		if c.controllerCostmap != nil {
			c.controllerCostmap.SetActive(false)
		}
	}
	c.currentGoal = nil
	c.state = navigation.StatePlanning
	c.trigger = navigation.TriggerNone
	c.cancelRequested = false
}

// stopWorkerLocked clears the run flag and wakes the planner worker so it
// observes the change at its next wait point (spec.md §4.2 cancellation).
// Caller holds c.plannerMu.
func (c *Coordinator) stopWorkerLocked() {
	c.run = false
	c.cond.Broadcast()
}

// tickPeriod returns the configured controller tick period.
func (c *Coordinator) tickPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.config.ControllerFrequency)
}
