package builtin

import (
	"context"
	"errors"
	"testing"

	"go.viam.com/test"

	"github.com/nav-stack/navcoordinator/logging"
	"github.com/nav-stack/navcoordinator/navigation"
	"github.com/nav-stack/navcoordinator/navigation/builtin/fake"
)

func TestRecoveryLadderAdvanceAndExhaustion(t *testing.T) {
	a := &fake.RecoveryBehavior{NameVal: "a"}
	b := &fake.RecoveryBehavior{NameVal: "b"}
	ladder := newRecoveryLadder([]navigation.RecoveryBehavior{a, b})
	logger := logging.NewTestLogger(t)

	test.That(t, ladder.exhausted(), test.ShouldBeFalse)
	test.That(t, ladder.current().Name(), test.ShouldEqual, "a")

	err := ladder.advance(context.Background(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ladder.exhausted(), test.ShouldBeFalse)
	test.That(t, ladder.current().Name(), test.ShouldEqual, "b")

	err = ladder.advance(context.Background(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ladder.exhausted(), test.ShouldBeTrue)

	ladder.reset()
	test.That(t, ladder.exhausted(), test.ShouldBeFalse)
}

func TestRecoveryLadderAdvancePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	a := &fake.RecoveryBehavior{NameVal: "a", RunFunc: func(ctx context.Context) error { return boom }}
	ladder := newRecoveryLadder([]navigation.RecoveryBehavior{a})
	logger := logging.NewTestLogger(t)

	err := ladder.advance(context.Background(), logger)
	test.That(t, err, test.ShouldEqual, boom)
	test.That(t, ladder.exhausted(), test.ShouldBeTrue)
}

func TestDefaultRecoveryLadderSharesRotateInstance(t *testing.T) {
	registry := navigation.NewRegistry()
	plannerCostmap := &fake.Costmap{}
	controllerCostmap := &fake.Costmap{}
	RegisterDefaultRecoveryBehaviors(registry, plannerCostmap, controllerCostmap, nil)

	behaviors, err := defaultRecoveryLadder(registry, 3.0, 12.0, 0.5, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(behaviors), test.ShouldEqual, 4)

	// The two rotate slots (index 1 and 3) are the exact same instance, per
	// the original's design (SPEC_FULL.md supplemented feature #7).
	test.That(t, behaviors[1], test.ShouldEqual, behaviors[3])
	test.That(t, behaviors[0], test.ShouldNotEqual, behaviors[2])
}

func TestDefaultRecoveryLadderNoRotationWhenDisallowed(t *testing.T) {
	registry := navigation.NewRegistry()
	RegisterDefaultRecoveryBehaviors(registry, &fake.Costmap{}, &fake.Costmap{}, nil)

	behaviors, err := defaultRecoveryLadder(registry, 3.0, 12.0, 0.5, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(behaviors), test.ShouldEqual, 2)
}
