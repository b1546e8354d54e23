package builtin

import "github.com/nav-stack/navcoordinator/navigation"

// tripleBuffer hands plans from the planner worker to the control loop
// without either side ever blocking behind the other (spec.md §3, §9). Three
// owned plan handles ­- producer, handoff, consumer - plus a fresh flag are
// guarded by the coordinator's planner mutex; see coordinator.go. No plan is
// ever copied: swaps are pointer moves under a short critical section.
type tripleBuffer struct {
	producer *navigation.Plan
	handoff  *navigation.Plan
	consumer *navigation.Plan
	fresh    bool
}

// publish is called by the planner worker under the planner mutex once it
// has written a new plan into producer. It swaps producer and handoff and
// raises fresh.
func (tb *tripleBuffer) publish(plan *navigation.Plan) {
	tb.producer = plan
	tb.producer, tb.handoff = tb.handoff, tb.producer
	tb.fresh = true
}

// takeIfFresh is called by the control loop under the planner mutex. If
// fresh is set it swaps handoff and consumer, clears fresh, and returns the
// newly-consumer plan along with true. Otherwise it returns (nil, false)
// without touching consumer.
func (tb *tripleBuffer) takeIfFresh() (*navigation.Plan, bool) {
	if !tb.fresh {
		return nil, false
	}
	tb.handoff, tb.consumer = tb.consumer, tb.handoff
	tb.fresh = false
	return tb.consumer, true
}

// reset clears all three slots and the fresh flag, used on hot-swap and on
// accepting a new goal via preemption.
func (tb *tripleBuffer) reset() {
	tb.producer = nil
	tb.handoff = nil
	tb.consumer = nil
	tb.fresh = false
}
