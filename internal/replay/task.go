package replay

import (
	"sync/atomic"
	"time"

	"netmock/pkg/traffic"
)

// TaskID identifies a task within its session. IDs are assigned
// monotonically so an observer juggling many tasks can demultiplex.
type TaskID int64

// Observer receives a task's delivery sequence: response metadata, then the
// whole body, then exactly one completion. A failure outcome delivers only
// the completion, carrying the error.
type Observer interface {
	OnResponse(id TaskID, status int, headers traffic.Header)
	OnData(id TaskID, body []byte)
	OnComplete(id TaskID, err error)
}

const (
	taskIdle int32 = iota
	taskRunning
	taskCompleted
)

// Task stands in for one in-flight request, replaying a captured outcome
// through the session's observer after its delay.
type Task struct {
	id      TaskID
	session *Session
	outcome traffic.Outcome
	delay   time.Duration
	state   atomic.Int32
}

func (t *Task) ID() TaskID { return t.id }

func (t *Task) Delay() time.Duration { return t.delay }

// Start schedules delivery and returns immediately. Starting a task twice
// is a no-op.
func (t *Task) Start() {
	if !t.state.CompareAndSwap(taskIdle, taskRunning) {
		return
	}
	t.session.clock.AfterFunc(t.delay, t.fire)
}

// Completed reports whether the delivery sequence has finished (or was
// suppressed by session teardown).
func (t *Task) Completed() bool {
	return t.state.Load() == taskCompleted
}

// fire delivers the whole callback sequence on one goroutine, so another
// task's stages can never interleave into this task's ordering.
func (t *Task) fire() {
	defer t.state.Store(taskCompleted)

	s := t.session
	obs := s.observer()
	if !s.alive() || obs == nil {
		s.log.Debug("delivery suppressed", "task", int64(t.id))
		return
	}
	if t.outcome.Err != nil {
		obs.OnComplete(t.id, t.outcome.Err)
		s.taskDone(t, t.outcome.Err)
		return
	}
	res := t.outcome.Response
	obs.OnResponse(t.id, res.StatusCode, res.Headers.Clone())
	obs.OnData(t.id, res.Body)
	obs.OnComplete(t.id, nil)
	s.taskDone(t, nil)
}
