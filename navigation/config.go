package navigation

import (
	"time"

	"go.viam.com/utils"
)

// RecoveryBehaviorConfig names one entry of a configured recovery ladder
// (spec.md §6 "recovery_behaviors").
type RecoveryBehaviorConfig struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Validate checks that a recovery behavior config entry is well-formed.
func (c *RecoveryBehaviorConfig) Validate(path string) error {
	if c.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if c.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	return nil
}

// Config collects every tunable named in spec.md §6 "Configuration options".
type Config struct {
	PlannerFrequency    float64 `json:"planner_frequency" yaml:"planner_frequency"`
	ControllerFrequency float64 `json:"controller_frequency" yaml:"controller_frequency"`

	PlannerPatience    time.Duration `json:"planner_patience" yaml:"planner_patience"`
	ControllerPatience time.Duration `json:"controller_patience" yaml:"controller_patience"`
	MaxPlanningRetries int           `json:"max_planning_retries" yaml:"max_planning_retries"`

	OscillationTimeout  time.Duration `json:"oscillation_timeout" yaml:"oscillation_timeout"`
	OscillationDistance float64       `json:"oscillation_distance" yaml:"oscillation_distance"`

	ConservativeResetDist float64 `json:"conservative_reset_dist" yaml:"conservative_reset_dist"`
	ClearingRadius        float64 `json:"clearing_radius" yaml:"clearing_radius"`

	ShutdownCostmaps        bool `json:"shutdown_costmaps" yaml:"shutdown_costmaps"`
	ClearingRotationAllowed bool `json:"clearing_rotation_allowed" yaml:"clearing_rotation_allowed"`
	RecoveryBehaviorEnabled bool `json:"recovery_behavior_enabled" yaml:"recovery_behavior_enabled"`

	MakePlanClearCostmap        bool `json:"make_plan_clear_costmap" yaml:"make_plan_clear_costmap"`
	MakePlanAddUnreachableGoal  bool `json:"make_plan_add_unreachable_goal" yaml:"make_plan_add_unreachable_goal"`

	BaseGlobalPlanner string                   `json:"base_global_planner" yaml:"base_global_planner"`
	BaseLocalPlanner  string                   `json:"base_local_planner" yaml:"base_local_planner"`
	RecoveryBehaviors []RecoveryBehaviorConfig `json:"recovery_behaviors" yaml:"recovery_behaviors"`

	PlanningFrame string `json:"planning_frame" yaml:"planning_frame"`
}

// Validate checks required fields and internal consistency, returning an
// error that names the offending field path, matching
// services/navigation/navigation.go's Config.Validate convention.
func (c *Config) Validate(path string) error {
	if c.BaseGlobalPlanner == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "base_global_planner")
	}
	if c.BaseLocalPlanner == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "base_local_planner")
	}
	if c.ControllerFrequency <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "controller_frequency")
	}
	for i := range c.RecoveryBehaviors {
		if err := c.RecoveryBehaviors[i].Validate(path); err != nil {
			return err
		}
	}
	return nil
}

// DefaultConfig returns sane defaults mirroring the original's constructor
// defaults (move_base.cpp's MoveBase::MoveBase), used when a deployment
// supplies no explicit configuration.
func DefaultConfig() *Config {
	return &Config{
		PlannerFrequency:       0.0,
		ControllerFrequency:    20.0,
		PlannerPatience:        5 * time.Second,
		ControllerPatience:     15 * time.Second,
		MaxPlanningRetries:     -1,
		OscillationTimeout:     0,
		OscillationDistance:    0.5,
		ConservativeResetDist:  3.0,
		ClearingRadius:         0.0, // used as is; no circumscribed-radius fallback is applied
		ShutdownCostmaps:       false,
		ClearingRotationAllowed: true,
		RecoveryBehaviorEnabled: true,
		MakePlanClearCostmap:    true,
		BaseGlobalPlanner:       "navfn",
		BaseLocalPlanner:        "trajectory_rollout",
		PlanningFrame:           "map",
	}
}
