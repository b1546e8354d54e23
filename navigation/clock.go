package navigation

import "github.com/benbjohnson/clock"

// Clock is the time source used by every supervisor deadline check in this
// module. Production code wires clock.New(); tests wire clock.NewMock() and
// fast-forward with mock.Add so that patience/oscillation timers fire
// deterministically without sleeping.
//
// Supervisors compare "now >= deadline" rather than computing a remaining
// duration, so that a clock that jumps forward (simulated time running
// faster than wall time, or a mock's Add) never leaves a deadline
// permanently unreachable (see spec.md §9, "Simulated-time clocks").
type Clock = clock.Clock

// NewClock returns the real wall-clock implementation.
func NewClock() Clock {
	return clock.New()
}
