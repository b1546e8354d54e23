package builtin

import (
	"fmt"

	"github.com/nav-stack/navcoordinator/navigation"
)

// resolveLegacyNames walks the registered class names for every
// behavior_list entry whose configured type name isn't registered.
//
// This reproduces the index reuse of the original loadRecoveryBehaviors: the
// inner loop that walks the registered class names is declared with the
// same index variable name as the outer loop over configured behaviors,
// shadowing it. The comparison and the write-back inside the inner loop then
// index into behaviorList using the *inner* loop's index rather than the
// outer one, so they look at the wrong slot. Inner indices past the end of
// behaviorList are skipped. The comparison is against the registered name
// itself, so a match writes back the value already in that slot: no entry's
// Type is ever changed, and an unregistered type stays unregistered. The
// shadowing is flagged here rather than fixed (see DESIGN.md, Open
// Question #2).
func resolveLegacyNames(behaviorList []navigation.RecoveryBehaviorConfig, registry *navigation.Registry) {
	classNames := registry.RecoveryBehaviorTypeNames()

	for i := range behaviorList {
		if registeredTypeExists(behaviorList[i].Type, classNames) {
			continue
		}

		//nolint:intentional-shadow // mirrors the original's index reuse bug
		for i := range classNames {
			if i < len(behaviorList) && behaviorList[i].Type == classNames[i] {
				behaviorList[i].Type = classNames[i]
			}
		}
	}
}

func registeredTypeExists(typeName string, classNames []string) bool {
	for _, n := range classNames {
		if n == typeName {
			return true
		}
	}
	return false
}

// swapResult describes the outcome of a hot-swap attempt.
type swapResult struct {
	globalPlanner navigation.GlobalPlanner
	localPlanner  navigation.LocalPlanner
	recoveries    []navigation.RecoveryBehavior
}

// buildCollaborators constructs a full collaborator set by name, used both
// on initial startup and on reconfiguration (spec.md §4.6). It does not
// mutate the running coordinator; the caller installs the result under the
// planner mutex after confirming construction succeeded, and rolls back to
// the previous set on any error, per spec.md §4.6 and
// SPEC_FULL.md's CollaboratorLoadFailed policy.
func buildCollaborators(
	registry *navigation.Registry,
	globalPlannerName, localPlannerName string,
	recoveryConfigs []navigation.RecoveryBehaviorConfig,
) (*swapResult, error) {
	gp, err := registry.GlobalPlanner(globalPlannerName)
	if err != nil {
		return nil, navigation.NewCollaboratorLoadError("global_planner", globalPlannerName, err)
	}

	lp, err := registry.LocalPlanner(localPlannerName)
	if err != nil {
		return nil, navigation.NewCollaboratorLoadError("local_planner", localPlannerName, err)
	}

	resolveLegacyNames(recoveryConfigs, registry)

	recoveries := make([]navigation.RecoveryBehavior, 0, len(recoveryConfigs))
	for _, rc := range recoveryConfigs {
		rb, err := registry.RecoveryBehavior(rc.Name, rc.Type)
		if err != nil {
			return nil, navigation.NewCollaboratorLoadError("recovery_behavior", fmt.Sprintf("%s(%s)", rc.Name, rc.Type), err)
		}
		recoveries = append(recoveries, rb)
	}

	return &swapResult{globalPlanner: gp, localPlanner: lp, recoveries: recoveries}, nil
}

// Reconfigure swaps the global planner, local planner, and recovery list by
// name (spec.md §4.6, §9 "shared collaborators under hot-swap"). Protocol:
// construct the new collaborators first, without holding the planner mutex;
// if construction fails, return the error and leave the previous
// collaborators and configured names untouched (CollaboratorLoadFailed,
// spec.md §7). Otherwise take the planner mutex, clear all three
// triple-buffer slots, reset state to PLANNING, zero velocity, install the
// new collaborators and config, and release the lock.
//
// A reconfigure with unchanged planner names and recovery list is not
// treated as a no-op: it clears the triple buffer (dropping the current
// plan), resets state to PLANNING, publishes zero velocity, and installs a
// fresh recovery ladder with its cursor at 0, exactly as any other
// reconfigure does.
func (c *Coordinator) Reconfigure(newConfig *navigation.Config) error {
	c.configMu.Lock()
	defer c.configMu.Unlock()

	collaborators, err := buildCollaborators(
		c.registry, newConfig.BaseGlobalPlanner, newConfig.BaseLocalPlanner, newConfig.RecoveryBehaviors,
	)
	if err != nil {
		return err
	}

	recoveries := collaborators.recoveries
	if len(recoveries) == 0 && newConfig.RecoveryBehaviorEnabled {
		recoveries, err = defaultRecoveryLadder(
			c.registry,
			newConfig.ConservativeResetDist,
			newConfig.ConservativeResetDist*4,
			newConfig.ClearingRadius,
			newConfig.ClearingRotationAllowed,
		)
		if err != nil {
			return err
		}
	}

	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()

	c.tb.reset()
	c.state = navigation.StatePlanning
	c.publishZeroVelocity()

	c.globalPlanner = collaborators.globalPlanner
	c.localPlanner = collaborators.localPlanner
	c.recoveryLadder = newRecoveryLadder(recoveries)
	c.config = newConfig

	return nil
}
