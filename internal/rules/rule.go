package rules

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// ErrInvalidPattern is returned when a pattern rule's expression does not
// compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// DefaultDelay keeps delivery asynchronous even when callers pass no delay,
// so timing-sensitive tests still observe a scheduling gap.
const DefaultDelay = time.Millisecond

// Generator computes a response for a pattern rule at resolve time.
// groups[0] is the full match, groups[1:] the capture groups.
type Generator func(url string, groups []string) traffic.Outcome

// Rule is one registered mock: a match condition plus the response it
// produces. Exact rules compare the request key; pattern rules match the
// URL against a compiled expression and synthesize the outcome per match.
type Rule struct {
	ID      domain.RuleID
	Key     string
	Pattern *regexp.Regexp
	Outcome traffic.Outcome
	Gen     Generator
	Delay   time.Duration
	Once    bool
}

func (r *Rule) matches(req *traffic.Request) bool {
	if r.Pattern != nil {
		return r.Pattern.MatchString(req.URL)
	}
	return req.Key() == r.Key
}

// Once builds an exact rule consumed by its first match.
func Once(req *traffic.Request, out traffic.Outcome, delay time.Duration) *Rule {
	return &Rule{Key: req.Key(), Outcome: out, Delay: normalize(delay), Once: true}
}

// Always builds an exact rule that matches indefinitely.
func Always(req *traffic.Request, out traffic.Outcome, delay time.Duration) *Rule {
	return &Rule{Key: req.Key(), Outcome: out, Delay: normalize(delay)}
}

// Pattern builds a repeatable rule matching request URLs against expr.
func Pattern(expr string, gen Generator, delay time.Duration) (*Rule, error) {
	re, err := regexCache.Get(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	return &Rule{Pattern: re, Gen: gen, Delay: normalize(delay)}, nil
}

// Static wraps a fixed outcome as a Generator.
func Static(out traffic.Outcome) Generator {
	return func(string, []string) traffic.Outcome { return out }
}

func normalize(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultDelay
	}
	return d
}
