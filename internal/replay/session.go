package replay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"netmock/internal/logger"
	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// Session owns the observer a group of tasks delivers to, the task ID
// counter, and the clock. Closing a session suppresses every delivery that
// has not fired yet.
type Session struct {
	id     domain.SessionID
	clock  Clock
	log    logger.Logger
	nextID atomic.Int64
	closed atomic.Bool

	mu  sync.RWMutex
	obs Observer
}

func NewSession(obs Observer, clock Clock, l logger.Logger) *Session {
	if clock == nil {
		clock = SystemClock()
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &Session{
		id:    domain.SessionID(uuid.NewString()),
		clock: clock,
		log:   l,
		obs:   obs,
	}
}

func (s *Session) ID() domain.SessionID { return s.id }

// SetObserver replaces the delivery target. Tasks read the observer when
// they fire, not when they are created.
func (s *Session) SetObserver(obs Observer) {
	s.mu.Lock()
	s.obs = obs
	s.mu.Unlock()
}

func (s *Session) observer() Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.obs
}

// Close tears the session down. Idempotent; never blocks on in-flight
// timers, their deferred actions check liveness before delivering.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.log.Debug("session closed", "session", string(s.id))
	}
}

func (s *Session) alive() bool { return !s.closed.Load() }

// NewTask creates an idle task carrying a captured outcome.
func (s *Session) NewTask(out traffic.Outcome, delay time.Duration) *Task {
	t := &Task{
		id:      TaskID(s.nextID.Add(1)),
		session: s,
		outcome: out,
		delay:   delay,
	}
	s.log.Debug("task created", "session", string(s.id), "task", int64(t.id))
	return t
}

func (s *Session) taskDone(t *Task, err error) {
	if err != nil {
		s.log.Debug("task completed with error", "session", string(s.id), "task", int64(t.id), "error", err.Error())
		return
	}
	s.log.Debug("task completed", "session", string(s.id), "task", int64(t.id))
}
