package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	c := NewManualClock()
	var fired []string
	c.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "late") })
	c.AfterFunc(5*time.Millisecond, func() { fired = append(fired, "early") })
	c.AfterFunc(5*time.Millisecond, func() { fired = append(fired, "early2") })

	c.Advance(4 * time.Millisecond)
	assert.Empty(t, fired)

	c.Advance(16 * time.Millisecond)
	assert.Equal(t, []string{"early", "early2", "late"}, fired)
	assert.Equal(t, 20*time.Millisecond, c.Now())
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock()
	fired := false
	stop := c.AfterFunc(time.Millisecond, func() { fired = true })

	assert.True(t, stop(), "stop before firing prevents the call")
	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.False(t, stop(), "second stop reports nothing to prevent")
}

func TestManualClockStopAfterFire(t *testing.T) {
	c := NewManualClock()
	stop := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	assert.False(t, stop())
}
