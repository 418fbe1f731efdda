package intercept

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"netmock/internal/logger"
	"netmock/internal/replay"
	"netmock/internal/rules"
	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// Evaluator decides what happens to a request no rule matches. The default
// policy is PassThrough for every request.
type Evaluator func(req *traffic.Request) domain.Decision

// UnmockedError reports a request that required a mock and had none. It is
// a test-configuration defect surfaced synchronously at task creation.
type UnmockedError struct {
	Method string
	URL    string
}

func (e *UnmockedError) Error() string {
	return fmt.Sprintf("no mock registered for %s %s", e.Method, e.URL)
}

// Point is the single seam where real versus simulated dispatch is decided.
type Point struct {
	registry *rules.Registry
	session  *replay.Session
	log      logger.Logger
	events   chan<- domain.InterceptEvent

	mu        sync.RWMutex
	evaluator Evaluator
	verbosity atomic.Int32
}

// Config wires a Point's collaborators.
type Config struct {
	Registry *rules.Registry
	Session  *replay.Session
	Logger   logger.Logger
	Events   chan<- domain.InterceptEvent
}

func New(cfg Config) *Point {
	l := cfg.Logger
	if l == nil {
		l = logger.NewNop()
	}
	return &Point{
		registry: cfg.Registry,
		session:  cfg.Session,
		log:      l,
		events:   cfg.Events,
	}
}

// SetEvaluator replaces the unmatched-request policy. Assigning a non-nil
// evaluator installs the interception seam, once.
func (p *Point) SetEvaluator(fn Evaluator) {
	p.mu.Lock()
	p.evaluator = fn
	p.mu.Unlock()
	if fn != nil {
		Install(p)
	}
}

func (p *Point) evaluate(req *traffic.Request) domain.Decision {
	p.mu.RLock()
	fn := p.evaluator
	p.mu.RUnlock()
	if fn == nil {
		return domain.PassThrough
	}
	return fn(req)
}

// SetVerbosity selects which resolution outcomes are logged.
func (p *Point) SetVerbosity(v domain.Verbosity) { p.verbosity.Store(int32(v)) }

func (p *Point) Verbosity() domain.Verbosity { return domain.Verbosity(p.verbosity.Load()) }

// CreateTask resolves req against the registry. A nil task with a nil error
// tells the caller to fall back to the real request path; an UnmockedError
// aborts creation with no task and no fallback.
func (p *Point) CreateTask(req *traffic.Request) (*replay.Task, error) {
	if res := p.registry.Resolve(req); res != nil {
		if p.Verbosity() >= domain.VerbosityMocked {
			p.log.Debug("request mocked", "method", req.Method, "url", req.URL, "rule", string(res.RuleID))
		}
		p.emit(domain.InterceptEvent{
			Type:   domain.EventResolved,
			URL:    req.URL,
			Method: req.Method,
			Rule:   &res.RuleID,
			Status: statusOf(res.Outcome),
		})
		return p.session.NewTask(res.Outcome, res.Delay), nil
	}

	if p.evaluate(req) == domain.Reject {
		p.log.Warn("unmocked request rejected", "method", req.Method, "url", req.URL)
		p.emit(domain.InterceptEvent{Type: domain.EventRejected, URL: req.URL, Method: req.Method})
		return nil, &UnmockedError{Method: req.Method, URL: req.URL}
	}

	if p.Verbosity() >= domain.VerbosityAll {
		p.log.Debug("request passed through", "method", req.Method, "url", req.URL)
	}
	p.emit(domain.InterceptEvent{Type: domain.EventPassed, URL: req.URL, Method: req.Method})
	return nil, nil
}

// emit sends without blocking; a full channel drops the event.
func (p *Point) emit(evt domain.InterceptEvent) {
	if p.events == nil {
		return
	}
	evt.Timestamp = time.Now().UnixMilli()
	select {
	case p.events <- evt:
	default:
	}
}

func statusOf(out traffic.Outcome) int {
	if out.Response != nil {
		return out.Response.StatusCode
	}
	return 0
}
