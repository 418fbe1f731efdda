package service

import (
	"sync"
	"time"

	"netmock/internal/config"
	"netmock/internal/intercept"
	"netmock/internal/logger"
	"netmock/internal/replay"
	"netmock/internal/rules"
	"netmock/internal/storage"
	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// Options wires a Service's collaborators. Zero values get defaults: nop
// logger, system clock, journal only when the config carries a sqlite DSN.
type Options struct {
	Config  *config.Config
	Logger  logger.Logger
	Clock   replay.Clock
	Journal *storage.Journal
}

// Service owns one registry, one delivery session and one interception
// point, and fans resolution events out to subscribers and the journal.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	registry *rules.Registry
	sessions *replay.Manager
	session  *replay.Session
	point    *intercept.Point
	journal  *storage.Journal
	events   chan domain.InterceptEvent
	done     chan struct{}
	closed   sync.Once

	subMu sync.Mutex
	subs  []chan domain.InterceptEvent
}

func New(opts Options) *Service {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	l := opts.Logger
	if l == nil {
		l = logger.NewNop()
	}

	s := &Service{
		cfg:      cfg,
		log:      l,
		registry: rules.NewRegistry(),
		sessions: replay.NewManager(l),
		journal:  opts.Journal,
		events:   make(chan domain.InterceptEvent, 64),
		done:     make(chan struct{}),
	}
	if s.journal == nil && cfg.Sqlite.Dsn != "" {
		j, err := storage.Open(cfg.Sqlite.Dsn, cfg.Sqlite.Prefix, l)
		if err != nil {
			l.Err(err, "journal disabled", "dsn", cfg.Sqlite.Dsn)
		} else {
			s.journal = j
		}
	}
	s.session = s.sessions.Create(nil, opts.Clock)
	s.point = intercept.New(intercept.Config{
		Registry: s.registry,
		Session:  s.session,
		Logger:   l,
		Events:   s.events,
	})
	go s.pump()
	return s
}

// MockOnce registers an exact rule consumed by its first match.
func (s *Service) MockOnce(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID {
	return s.registry.Add(rules.Once(req, out, s.delay(delay)))
}

// MockAlways registers an exact rule that matches indefinitely.
func (s *Service) MockAlways(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID {
	return s.registry.Add(rules.Always(req, out, s.delay(delay)))
}

// MockPattern registers a repeatable pattern rule with a fixed outcome.
func (s *Service) MockPattern(expr string, out traffic.Outcome, delay time.Duration) (domain.RuleID, error) {
	return s.MockPatternFunc(expr, rules.Static(out), delay)
}

// MockPatternFunc registers a repeatable pattern rule whose outcome is
// computed per match.
func (s *Service) MockPatternFunc(expr string, gen rules.Generator, delay time.Duration) (domain.RuleID, error) {
	r, err := rules.Pattern(expr, gen, s.delay(delay))
	if err != nil {
		return "", err
	}
	return s.registry.Add(r), nil
}

// ClearMocks empties the registry. Tasks created before the clear keep
// their captured outcome; evaluator and installation state are untouched.
func (s *Service) ClearMocks() {
	s.registry.Clear()
	s.log.Info("mocks cleared")
}

// SetObserver sets the delivery target for simulated tasks.
func (s *Service) SetObserver(obs replay.Observer) { s.session.SetObserver(obs) }

// SetEvaluator replaces the unmatched-request policy and installs the
// interception seam on first non-default assignment.
func (s *Service) SetEvaluator(fn intercept.Evaluator) { s.point.SetEvaluator(fn) }

// SetVerbosity selects which resolution outcomes are logged.
func (s *Service) SetVerbosity(v domain.Verbosity) { s.point.SetVerbosity(v) }

// CreateTask is the interception entry point; see intercept.Point.CreateTask.
func (s *Service) CreateTask(req *traffic.Request) (*replay.Task, error) {
	return s.point.CreateTask(req)
}

// Stats returns lifetime resolution counters.
func (s *Service) Stats() domain.EngineStats { return s.registry.Stats() }

// Journal returns the resolution journal, or nil when disabled.
func (s *Service) Journal() *storage.Journal { return s.journal }

// SessionID identifies this service's delivery session.
func (s *Service) SessionID() domain.SessionID { return s.session.ID() }

// SubscribeEvents returns a channel of resolution events. Slow subscribers
// drop events rather than block the engine.
func (s *Service) SubscribeEvents() <-chan domain.InterceptEvent {
	ch := make(chan domain.InterceptEvent, 16)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// Close tears down the session (suppressing undelivered callbacks), stops
// the event pump and closes the journal.
func (s *Service) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.done)
		s.sessions.Delete(s.session.ID())
		if s.journal != nil {
			err = s.journal.Close()
		}
	})
	return err
}

func (s *Service) pump() {
	for {
		select {
		case <-s.done:
			return
		case evt := <-s.events:
			s.record(evt)
			s.subMu.Lock()
			for _, ch := range s.subs {
				select {
				case ch <- evt:
				default:
				}
			}
			s.subMu.Unlock()
		}
	}
}

func (s *Service) record(evt domain.InterceptEvent) {
	if s.journal == nil {
		return
	}
	rec := &storage.Record{
		SessionID: string(s.session.ID()),
		URL:       evt.URL,
		Method:    evt.Method,
		Result:    evt.Type,
		Status:    evt.Status,
	}
	if evt.Rule != nil {
		rec.Rule = string(*evt.Rule)
	}
	if err := s.journal.Append(rec); err != nil {
		s.log.Err(err, "journal append failed")
	}
}

func (s *Service) delay(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return time.Duration(s.cfg.Mock.DefaultDelayMS) * time.Millisecond
}
