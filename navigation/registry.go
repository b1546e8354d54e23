package navigation

import (
	"fmt"
	"sync"
)

// GlobalPlannerConstructor builds a GlobalPlanner from its configured name.
type GlobalPlannerConstructor func(name string) (GlobalPlanner, error)

// LocalPlannerConstructor builds a LocalPlanner from its configured name.
type LocalPlannerConstructor func(name string) (LocalPlanner, error)

// RecoveryBehaviorConstructor builds a RecoveryBehavior from its configured
// name and type.
type RecoveryBehaviorConstructor func(name, behaviorType string) (RecoveryBehavior, error)

// Registry maps configured names to collaborator constructors, the open
// dispatch mechanism spec.md §9 calls for ("use an interface abstraction
// with a registry; avoid inheritance hierarchies"). Grounded on
// go.viam.com/rdk/registry's name-to-constructor map pattern, trimmed down
// to the three capability sets this module needs.
type Registry struct {
	mu                sync.RWMutex
	globalPlanners    map[string]GlobalPlannerConstructor
	localPlanners     map[string]LocalPlannerConstructor
	recoveryBehaviors map[string]RecoveryBehaviorConstructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		globalPlanners:    map[string]GlobalPlannerConstructor{},
		localPlanners:     map[string]LocalPlannerConstructor{},
		recoveryBehaviors: map[string]RecoveryBehaviorConstructor{},
	}
}

// RegisterGlobalPlanner adds a named global-planner constructor.
func (r *Registry) RegisterGlobalPlanner(name string, ctor GlobalPlannerConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalPlanners[name] = ctor
}

// RegisterLocalPlanner adds a named local-planner constructor.
func (r *Registry) RegisterLocalPlanner(name string, ctor LocalPlannerConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.localPlanners[name] = ctor
}

// RegisterRecoveryBehavior adds a named recovery-behavior constructor.
func (r *Registry) RegisterRecoveryBehavior(behaviorType string, ctor RecoveryBehaviorConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recoveryBehaviors[behaviorType] = ctor
}

// GlobalPlanner looks up and constructs a global planner by name.
func (r *Registry) GlobalPlanner(name string) (GlobalPlanner, error) {
	r.mu.RLock()
	ctor, ok := r.globalPlanners[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no global planner registered with name %q", name)
	}
	return ctor(name)
}

// LocalPlanner looks up and constructs a local planner by name.
func (r *Registry) LocalPlanner(name string) (LocalPlanner, error) {
	r.mu.RLock()
	ctor, ok := r.localPlanners[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no local planner registered with name %q", name)
	}
	return ctor(name)
}

// RecoveryBehaviorTypeNames returns every registered recovery-behavior type
// name. Used by hot-swap's legacy short-name resolution (see
// navigation/builtin/hotswap.go).
func (r *Registry) RecoveryBehaviorTypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.recoveryBehaviors))
	for name := range r.recoveryBehaviors {
		names = append(names, name)
	}
	return names
}

// RecoveryBehavior constructs a recovery behavior of the given type, with the
// given instance name.
func (r *Registry) RecoveryBehavior(name, behaviorType string) (RecoveryBehavior, error) {
	r.mu.RLock()
	ctor, ok := r.recoveryBehaviors[behaviorType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no recovery behavior type registered: %q", behaviorType)
	}
	return ctor(name, behaviorType)
}
