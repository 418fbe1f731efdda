package replay

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules deferred work. The system clock delegates to
// time.AfterFunc; ManualClock lets tests advance virtual time instead of
// sleeping.
type Clock interface {
	// AfterFunc runs fn after d on the clock's delivery context. The
	// returned stop reports true when it prevented the call.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

type manualTimer struct {
	at      time.Duration
	seq     int64
	fn      func()
	stopped bool
	fired   bool
}

// ManualClock is a virtual clock. Timers fire only when Advance moves time
// past their deadline, on the goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int64
	timers []*manualTimer
}

func NewManualClock() *ManualClock { return &ManualClock{} }

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) func() bool {
	c.mu.Lock()
	c.seq++
	t := &manualTimer{at: c.now + d, seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Now returns elapsed virtual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves virtual time forward, firing due timers in deadline order
// (registration order breaks ties).
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	rest := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
}
