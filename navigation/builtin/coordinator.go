// Package builtin implements the concrete navigation coordinator: the
// triple-buffered planner/control concurrency described in
// github.com/nav-stack/navcoordinator/navigation's interfaces.
package builtin

import (
	"context"
	"sync"
	"time"

	goutils "go.viam.com/utils"

	"github.com/nav-stack/navcoordinator/logging"
	"github.com/nav-stack/navcoordinator/navigation"
)

// outputBufferSize bounds the coordinator's output channels. A full channel
// drops the newest sample rather than blocking the control loop; these
// channels stand in for the pub/sub transport fabric that spec.md §1 places
// out of scope, so the coordinator only needs to not stall against a slow or
// absent subscriber.
const outputBufferSize = 8

// Coordinator is the concrete move-base-style navigation coordinator. It
// owns the triple-buffer, state, supervisors, and recovery ladder
// exclusively; the global/local planners and costmaps are shared references
// accessed only under the documented locks (spec.md §3 Ownership, §5).
//
// Grounded on services/motion/builtin/builtin.go's builtIn struct: a mutex
// guarding mutable fields, dependency references taken at construction or
// swapped under lock, and a Close() that cancels background work and waits
// for it.
type Coordinator struct {
	config   *navigation.Config
	registry *navigation.Registry
	logger   logging.Logger
	clock    navigation.Clock

	// configMu is the "configuration mutex" of spec.md §5: held across
	// reconfiguration so that collaborators cannot be swapped mid-tick. Go
	// has no recursive mutex, so unlike the original's recursive
	// configuration/planner mutexes, tickLocked and the hot-swap path never
	// call into each other while holding configMu; the brief hold at the
	// top of each tick (inside tickLocked, via plannerMu) is what actually
	// provides the "no swap mid-tick" guarantee, and configMu here protects
	// only the swap itself against concurrent reconfiguration requests.
	configMu sync.Mutex

	// plannerMu guards the current goal cell, the run flag, the triple
	// buffer, coordinator state, supervisors, and the recovery ladder — the
	// same scope as spec.md §5's planner mutex. It is always released
	// before calling into a collaborator that may block.
	plannerMu sync.Mutex
	cond      *sync.Cond

	currentGoal     *navigation.Goal
	run             bool
	shutdown        bool
	cancelRequested bool
	lastTickPeriod  time.Duration

	state   navigation.CoordinatorState
	trigger navigation.RecoveryTrigger

	tb                  tripleBuffer
	recoveryLadder      *recoveryLadder
	oscillation         *oscillationSupervisor
	plannerPatience     *patienceSupervisor
	controllerPatience  *patienceSupervisor

	globalPlanner      navigation.GlobalPlanner
	localPlanner       navigation.LocalPlanner
	plannerCostmap     navigation.Costmap
	controllerCostmap  navigation.Costmap
	poseSource         navigation.RobotPoseSource
	transform          navigation.TransformService

	costmapResolutionOverride float64

	velocityOut chan navigation.Twist
	goalOut     chan navigation.Pose
	feedbackOut chan navigation.Pose
	recoveryOut chan navigation.RecoveryStatus
	resultOut   chan navigation.Result

	ctx               context.Context
	cancelFn          context.CancelFunc
	backgroundWorkers sync.WaitGroup
}

// Deps collects the collaborator references a Coordinator needs beyond what
// the registry can construct by name: the things spec.md §1 treats as
// externally-owned (costmaps, the transform service, a pose source).
type Deps struct {
	PlannerCostmap    navigation.Costmap
	ControllerCostmap navigation.Costmap
	PoseSource        navigation.RobotPoseSource
	Transform         navigation.TransformService
}

// NewCoordinator constructs a Coordinator, builds its initial collaborator
// set from cfg by name via registry, and starts the planner worker and
// control loop goroutines. Grounded on
// services/motion/builtin/builtin.go's NewBuiltIn and
// services/motion/builtin/state/state.go's execution.start(), using
// go.viam.com/utils.PanicCapturingGo for both background loops so a panic in
// either is logged rather than taking down the process.
func NewCoordinator(
	ctx context.Context,
	cfg *navigation.Config,
	registry *navigation.Registry,
	logger logging.Logger,
	clk navigation.Clock,
	deps Deps,
) (*Coordinator, error) {
	collaborators, err := buildCollaborators(registry, cfg.BaseGlobalPlanner, cfg.BaseLocalPlanner, cfg.RecoveryBehaviors)
	if err != nil {
		return nil, err
	}

	recoveries := collaborators.recoveries
	if len(recoveries) == 0 && cfg.RecoveryBehaviorEnabled {
		recoveries, err = defaultRecoveryLadder(
			registry,
			cfg.ConservativeResetDist,
			cfg.ConservativeResetDist*4,
			cfg.ClearingRadius,
			cfg.ClearingRotationAllowed,
		)
		if err != nil {
			return nil, err
		}
	}

	cancelCtx, cancelFn := context.WithCancel(ctx)
	now := clk.Now()

	c := &Coordinator{
		config:   cfg,
		registry: registry,
		logger:   logger,
		clock:    clk,

		globalPlanner:      collaborators.globalPlanner,
		localPlanner:       collaborators.localPlanner,
		plannerCostmap:     deps.PlannerCostmap,
		controllerCostmap:  deps.ControllerCostmap,
		poseSource:         deps.PoseSource,
		transform:          deps.Transform,

		recoveryLadder:     newRecoveryLadder(recoveries),
		oscillation:        newOscillationSupervisor(cfg.OscillationDistance, cfg.OscillationTimeout, now),
		plannerPatience:    newPatienceSupervisor(cfg.PlannerPatience, cfg.MaxPlanningRetries, now),
		controllerPatience: newPatienceSupervisor(cfg.ControllerPatience, -1, now),

		velocityOut: make(chan navigation.Twist, outputBufferSize),
		goalOut:     make(chan navigation.Pose, outputBufferSize),
		feedbackOut: make(chan navigation.Pose, outputBufferSize),
		recoveryOut: make(chan navigation.RecoveryStatus, outputBufferSize),
		resultOut:   make(chan navigation.Result, outputBufferSize),

		ctx:      cancelCtx,
		cancelFn: cancelFn,
	}
	c.cond = sync.NewCond(&c.plannerMu)

	c.backgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer c.backgroundWorkers.Done()
		c.plannerWorkerLoop(cancelCtx)
	})

	c.backgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer c.backgroundWorkers.Done()
		c.controlLoop(cancelCtx)
	})

	return c, nil
}

// Close stops both background goroutines and waits for them to exit,
// flushing the output channels first (mirrors
// services/motion/builtin/move_attempt.go's cancel(), which flushes its
// channels before waiting). Sends on these channels never block (see
// publishVelocity), so the flush only discards outputs nobody collected.
func (c *Coordinator) Close(ctx context.Context) error {
	c.plannerMu.Lock()
	c.shutdown = true
	c.run = false
	c.cond.Broadcast()
	c.plannerMu.Unlock()

	c.cancelFn()

	goutils.FlushChan(c.velocityOut)
	goutils.FlushChan(c.goalOut)
	goutils.FlushChan(c.feedbackOut)
	goutils.FlushChan(c.recoveryOut)
	goutils.FlushChan(c.resultOut)

	c.backgroundWorkers.Wait()
	return nil
}

// currentRobotPose reads the robot's pose via the configured pose source,
// translating a missing source or a lookup failure into
// navigation.PoseUnavailableError (spec.md §7).
func (c *Coordinator) currentRobotPose(ctx context.Context) (navigation.Pose, error) {
	if c.poseSource == nil {
		return navigation.Pose{}, navigation.NewPoseUnavailableError(nil)
	}
	pose, err := c.poseSource.CurrentPose(ctx)
	if err != nil {
		return navigation.Pose{}, navigation.NewPoseUnavailableError(err)
	}
	return pose, nil
}

// resolveStart returns the supplied start pose, or the current robot pose if
// none was supplied (spec.md §4.4: "if the caller supplies no start, use the
// current robot pose").
func (c *Coordinator) resolveStart(ctx context.Context, start *navigation.Pose) (navigation.Pose, error) {
	if start != nil {
		return *start, nil
	}
	return c.currentRobotPose(ctx)
}

// MakePlan is the public entry point for the make_plan service (spec.md
// §4.4, §6).
func (c *Coordinator) MakePlan(ctx context.Context, req MakePlanRequest) (*navigation.Plan, error) {
	return c.makePlan(ctx, req)
}

// ClearCostmaps resets all layers of both the planner and controller
// costmaps (spec.md §6 clear_costmaps). Idempotent: resetting an
// already-clear costmap is a no-op from the caller's perspective (spec.md
// §8 round-trip property).
func (c *Coordinator) ClearCostmaps() {
	if c.plannerCostmap != nil {
		c.plannerCostmap.ResetLayers()
	}
	if c.controllerCostmap != nil {
		c.controllerCostmap.ResetLayers()
	}
}

// publishZeroVelocity sends the zero twist, used at every CLEARING entry
// and terminal outcome per spec.md §8 invariant 4.
func (c *Coordinator) publishZeroVelocity() {
	c.publishVelocity(navigation.Zero)
}

func (c *Coordinator) publishVelocity(t navigation.Twist) {
	select {
	case c.velocityOut <- t:
	default:
	}
}

func (c *Coordinator) publishCurrentGoal(pose navigation.Pose) {
	select {
	case c.goalOut <- pose:
	default:
	}
}

func (c *Coordinator) publishFeedback(pose navigation.Pose) {
	select {
	case c.feedbackOut <- pose:
	default:
	}
}

func (c *Coordinator) publishRecoveryStatus(s navigation.RecoveryStatus) {
	select {
	case c.recoveryOut <- s:
	default:
	}
}

func (c *Coordinator) publishResult(r navigation.Result) {
	select {
	case c.resultOut <- r:
	default:
	}
}

// VelocityOut, GoalOut, FeedbackOut, RecoveryOut, and ResultOut expose the
// coordinator's output channels (spec.md §6 Topic outputs, Action endpoint
// feedback/terminal status) for a transport layer to forward. Wiring those
// channels onto an actual pub/sub or action-server fabric is out of scope
// (spec.md §1).
func (c *Coordinator) VelocityOut() <-chan navigation.Twist          { return c.velocityOut }
func (c *Coordinator) GoalOut() <-chan navigation.Pose               { return c.goalOut }
func (c *Coordinator) FeedbackOut() <-chan navigation.Pose           { return c.feedbackOut }
func (c *Coordinator) RecoveryOut() <-chan navigation.RecoveryStatus { return c.recoveryOut }
func (c *Coordinator) ResultOut() <-chan navigation.Result           { return c.resultOut }

// State returns the coordinator's current state, for diagnostics and tests.
func (c *Coordinator) State() navigation.CoordinatorState {
	c.plannerMu.Lock()
	defer c.plannerMu.Unlock()
	return c.state
}
