package navigation

import (
	"testing"

	"go.viam.com/test"
)

func TestNewClockReturnsAWorkingClock(t *testing.T) {
	c := NewClock()
	test.That(t, c.Now().IsZero(), test.ShouldBeFalse)
}
