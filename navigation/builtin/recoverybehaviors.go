package builtin

import (
	"context"

	"github.com/nav-stack/navcoordinator/navigation"
)

// clearCostmapRecovery clears one or both costmaps. It backs the default
// ladder's "conservative_reset"/"aggressive_reset" rungs (spec.md §6
// default recovery ladder); the two differ only in their instance name. The
// registered constructor never sets resetDistance, and Run always clears
// every layer of both costmaps regardless of distance.
type clearCostmapRecovery struct {
	name              string
	resetDistance     float64
	plannerCostmap    navigation.Costmap
	controllerCostmap navigation.Costmap
}

func (r *clearCostmapRecovery) Name() string { return r.name }

func (r *clearCostmapRecovery) Run(ctx context.Context) error {
	if r.plannerCostmap != nil {
		r.plannerCostmap.ResetLayers()
	}
	if r.controllerCostmap != nil {
		r.controllerCostmap.ResetLayers()
	}
	return nil
}

// rotateRecovery spins the robot in place via the configured navigation.Rotator.
// Backs the default ladder's rotate-in-place rungs.
type rotateRecovery struct {
	name    string
	rotator navigation.Rotator
}

func (r *rotateRecovery) Name() string { return r.name }

func (r *rotateRecovery) Run(ctx context.Context) error {
	if r.rotator == nil {
		return nil
	}
	return r.rotator.RotateInPlace(ctx)
}

// RegisterDefaultRecoveryBehaviors registers the two built-in recovery
// behavior types ("clear_costmap_recovery", "rotate_recovery") the default
// ladder (spec.md §6) is assembled from. A deployment supplying its own
// recovery_behaviors config may still reference these type names, or
// register additional types of its own via navigation.Registry directly.
func RegisterDefaultRecoveryBehaviors(
	registry *navigation.Registry,
	plannerCostmap, controllerCostmap navigation.Costmap,
	rotator navigation.Rotator,
) {
	registry.RegisterRecoveryBehavior("clear_costmap_recovery", func(name, behaviorType string) (navigation.RecoveryBehavior, error) {
		return &clearCostmapRecovery{name: name, plannerCostmap: plannerCostmap, controllerCostmap: controllerCostmap}, nil
	})
	registry.RegisterRecoveryBehavior("rotate_recovery", func(name, behaviorType string) (navigation.RecoveryBehavior, error) {
		return &rotateRecovery{name: name, rotator: rotator}, nil
	})
}
