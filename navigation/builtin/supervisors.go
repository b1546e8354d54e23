package builtin

import (
	"time"

	"github.com/golang/geo/r3"

	"github.com/nav-stack/navcoordinator/navigation"
)

// oscillationSupervisor is a pure time+distance check driven by control loop
// ticks; it owns no thread of its own (spec.md §4.5).
type oscillationSupervisor struct {
	distanceThreshold float64
	timeout           time.Duration // 0 disables

	anchor    r3.Vector
	lastReset time.Time
}

func newOscillationSupervisor(distanceThreshold float64, timeout time.Duration, now time.Time) *oscillationSupervisor {
	return &oscillationSupervisor{
		distanceThreshold: distanceThreshold,
		timeout:           timeout,
		lastReset:         now,
	}
}

// checkProgress implements spec.md §4.3 step 5: if the robot has moved far
// enough from the anchor, the anchor and timestamp reset and true is
// returned (the caller uses this to clear an OSCILLATION trigger).
func (s *oscillationSupervisor) checkProgress(pose r3.Vector, now time.Time) (progressed bool) {
	if pose.Sub(s.anchor).Norm() >= s.distanceThreshold {
		s.anchor = pose
		s.lastReset = now
		return true
	}
	return false
}

// expired reports whether the oscillation timeout has elapsed since the last
// reset. A zero timeout disables oscillation detection entirely (spec.md §8
// boundary case).
func (s *oscillationSupervisor) expired(now time.Time) bool {
	if s.timeout <= 0 {
		return false
	}
	return now.After(s.lastReset.Add(s.timeout)) || now.Equal(s.lastReset.Add(s.timeout))
}

func (s *oscillationSupervisor) reset(pose r3.Vector, now time.Time) {
	s.anchor = pose
	s.lastReset = now
}

// patienceSupervisor bounds wall-clock time and optionally attempt count for
// a single planner phase (spec.md §4.5, §9 "prefer now >= deadline").
type patienceSupervisor struct {
	patience       time.Duration
	maxRetries     int // negative disables the attempt-count bound
	lastSuccess    time.Time
	attemptsFailed int
}

func newPatienceSupervisor(patience time.Duration, maxRetries int, now time.Time) *patienceSupervisor {
	return &patienceSupervisor{
		patience:    patience,
		maxRetries:  maxRetries,
		lastSuccess: now,
	}
}

// recordSuccess clears the retry counter and bumps lastSuccess to now.
func (s *patienceSupervisor) recordSuccess(now time.Time) {
	s.lastSuccess = now
	s.attemptsFailed = 0
}

// recordFailure bumps the retry counter.
func (s *patienceSupervisor) recordFailure() {
	s.attemptsFailed++
}

// exhausted reports whether patience is spent: either the wall-clock
// deadline has passed, or (when maxRetries is non-negative) the attempt
// count cap has been reached.
func (s *patienceSupervisor) exhausted(now time.Time) bool {
	deadline := s.lastSuccess.Add(s.patience)
	if now.After(deadline) || now.Equal(deadline) {
		return true
	}
	if s.maxRetries >= 0 && s.attemptsFailed > s.maxRetries {
		return true
	}
	return false
}

// poseVector extracts the planar position of a navigation.Pose for use with
// oscillationSupervisor's distance checks.
func poseVector(p navigation.Pose) r3.Vector {
	return p.Position
}
