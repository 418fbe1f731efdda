package api

import (
	"sync"
	"time"

	"netmock/internal/intercept"
	"netmock/internal/logger"
	"netmock/internal/replay"
	"netmock/internal/rules"
	"netmock/internal/service"
	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// Service is the public surface of the mock engine.
type Service interface {
	// MockOnce registers an exact rule consumed by its first match.
	MockOnce(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID

	// MockAlways registers an exact rule that matches indefinitely.
	MockAlways(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID

	// MockPattern registers a repeatable pattern rule with a fixed outcome.
	MockPattern(expr string, out traffic.Outcome, delay time.Duration) (domain.RuleID, error)

	// MockPatternFunc registers a repeatable pattern rule with a per-match
	// generator.
	MockPatternFunc(expr string, gen rules.Generator, delay time.Duration) (domain.RuleID, error)

	// ClearMocks empties the registry.
	ClearMocks()

	// SetObserver sets the delivery target for simulated tasks.
	SetObserver(obs replay.Observer)

	// SetEvaluator replaces the unmatched-request policy.
	SetEvaluator(fn intercept.Evaluator)

	// SetVerbosity selects which resolution outcomes are logged.
	SetVerbosity(v domain.Verbosity)

	// CreateTask resolves a request into a simulated task. A nil task with
	// a nil error means fall back to the real request path.
	CreateTask(req *traffic.Request) (*replay.Task, error)

	// Stats returns lifetime resolution counters.
	Stats() domain.EngineStats

	// SubscribeEvents streams resolution events.
	SubscribeEvents() <-chan domain.InterceptEvent

	// Close tears the engine down.
	Close() error
}

// NewService builds an engine instance with its own registry and session.
func NewService(l logger.Logger) Service {
	return service.New(service.Options{Logger: l})
}

var (
	defaultOnce sync.Once
	defaultSvc  Service
)

// Default returns the shared process-wide engine instance.
func Default() Service {
	defaultOnce.Do(func() {
		defaultSvc = NewService(logger.NewNop())
	})
	return defaultSvc
}

// MockOnce registers a single-use mock on the default engine.
func MockOnce(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID {
	return Default().MockOnce(req, out, delay)
}

// MockAlways registers a repeatable mock on the default engine.
func MockAlways(req *traffic.Request, out traffic.Outcome, delay time.Duration) domain.RuleID {
	return Default().MockAlways(req, out, delay)
}

// MockPattern registers a repeatable pattern mock on the default engine.
func MockPattern(expr string, out traffic.Outcome, delay time.Duration) (domain.RuleID, error) {
	return Default().MockPattern(expr, out, delay)
}

// ClearAllMocks empties the default engine's registry.
func ClearAllMocks() {
	Default().ClearMocks()
}

// SetEvaluator replaces the default engine's unmatched-request policy.
func SetEvaluator(fn intercept.Evaluator) {
	Default().SetEvaluator(fn)
}
