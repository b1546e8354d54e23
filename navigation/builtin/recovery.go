package builtin

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nav-stack/navcoordinator/logging"
	"github.com/nav-stack/navcoordinator/navigation"
)

// recoveryLadder is the ordered list of escalating mitigations described in
// spec.md §3/§4.5/§4.6. recoveryIndex is a monotonic cursor within a single
// goal execution, reset only at explicit events: a new plan found after a
// PLANNING_FAILED trigger, a valid velocity after a CONTROLLING_FAILED
// trigger, a new goal, preemption, a planning-frame change, or oscillation
// progress after an OSCILLATION trigger.
type recoveryLadder struct {
	behaviors     []navigation.RecoveryBehavior
	recoveryIndex int
}

func newRecoveryLadder(behaviors []navigation.RecoveryBehavior) *recoveryLadder {
	return &recoveryLadder{behaviors: behaviors}
}

// exhausted reports whether every configured recovery has already run for
// this goal.
func (l *recoveryLadder) exhausted() bool {
	return l.recoveryIndex >= len(l.behaviors)
}

// reset returns the cursor to 0, e.g. on a new goal or successful plan.
func (l *recoveryLadder) reset() {
	l.recoveryIndex = 0
}

// current returns the behavior the cursor currently points at. Caller must
// check !exhausted() first.
func (l *recoveryLadder) current() navigation.RecoveryBehavior {
	return l.behaviors[l.recoveryIndex]
}

// advance runs the current recovery behavior under a watchdog goroutine so
// that a hung behavior cannot wedge the coordinator's shutdown path, then
// increments the cursor. Grounded on
// services/motion/builtin/replan.go's errgroup.WithContext pattern: the
// behavior runs in the errgroup, and ctx cancellation (process shutdown)
// returns from advance with ctx's error even if the behavior itself ignores
// cancellation, since RecoveryBehavior.Run may legitimately block for
// seconds per its interface contract.
func (l *recoveryLadder) advance(ctx context.Context, logger logging.Logger) error {
	behavior := l.current()
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return behavior.Run(groupCtx)
	})
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	l.recoveryIndex++
	if err != nil {
		logger.Warnw("recovery behavior returned an error", "name", behavior.Name(), "err", err)
	}
	return err
}

// status reports the current rung for publication as a navigation.RecoveryStatus.
func (l *recoveryLadder) status(pose navigation.Pose) navigation.RecoveryStatus {
	name := ""
	if !l.exhausted() {
		name = l.current().Name()
	}
	return navigation.RecoveryStatus{
		Pose:                 pose,
		CurrentRecoveryIndex: l.recoveryIndex,
		TotalRecoveries:      len(l.behaviors),
		RecoveryBehaviorName: name,
	}
}

// rotateRecoveryName is the instance name given to the single shared
// in-place-rotation behavior used twice in the default ladder (see
// defaultRecoveryLadder).
const rotateRecoveryName = "rotate_recovery"

// defaultRecoveryLadder builds the conservative-clear -> rotate ->
// aggressive-clear -> rotate ladder spec.md §6 specifies when no
// recovery_behaviors are configured. The original constructs a single
// RotateRecovery instance and appends it to the list twice rather than
// building two independent instances (SPEC_FULL.md supplemented feature
// #7); we reproduce that sharing here since a stateless rotate-in-place
// behavior is safe to alias, not because it was required.
func defaultRecoveryLadder(
	registry *navigation.Registry,
	conservativeResetDist, aggressiveResetDist, clearingRadius float64,
	rotationAllowed bool,
) ([]navigation.RecoveryBehavior, error) {
	var behaviors []navigation.RecoveryBehavior

	conservative, err := registry.RecoveryBehavior("conservative_reset", "clear_costmap_recovery")
	if err != nil {
		return nil, err
	}
	behaviors = append(behaviors, conservative)

	var rotate navigation.RecoveryBehavior
	if rotationAllowed {
		rotate, err = registry.RecoveryBehavior(rotateRecoveryName, "rotate_recovery")
		if err != nil {
			return nil, err
		}
		behaviors = append(behaviors, rotate)
	}

	aggressive, err := registry.RecoveryBehavior("aggressive_reset", "clear_costmap_recovery")
	if err != nil {
		return nil, err
	}
	behaviors = append(behaviors, aggressive)

	if rotationAllowed {
		behaviors = append(behaviors, rotate)
	}

	return behaviors, nil
}
