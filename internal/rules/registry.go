package rules

import (
	"strconv"
	"sync"
	"time"

	"netmock/pkg/domain"
	"netmock/pkg/traffic"
)

// Registry is the ordered collection of mock rules. First registered, first
// tried; duplicates are legal. A Once rule is removed as part of resolution,
// under the same lock, so two racing requests can never both consume it.
type Registry struct {
	mu      sync.Mutex
	rules   []*Rule
	next    int64
	total   int64
	matched int64
	byRule  map[domain.RuleID]int64
}

func NewRegistry() *Registry {
	return &Registry{byRule: make(map[domain.RuleID]int64)}
}

// Add appends a rule and assigns its ID.
func (g *Registry) Add(r *Rule) domain.RuleID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	r.ID = domain.RuleID("rule-" + strconv.FormatInt(g.next, 10))
	g.rules = append(g.rules, r)
	return r.ID
}

// Resolution is the snapshot handed to the interception point. It captures
// everything the simulated task needs, so a later Clear cannot affect it.
type Resolution struct {
	RuleID  domain.RuleID
	Outcome traffic.Outcome
	Delay   time.Duration
}

// Resolve scans rules in insertion order and returns a snapshot of the first
// hit, or nil when nothing matches. Pattern generators run after the lock is
// released; a generator failure surfaces as a failure outcome, never as a
// resolution error.
func (g *Registry) Resolve(req *traffic.Request) *Resolution {
	g.mu.Lock()
	g.total++
	var hit *Rule
	for i := range g.rules {
		r := g.rules[i]
		if !r.matches(req) {
			continue
		}
		hit = r
		g.matched++
		g.byRule[r.ID]++
		if r.Once {
			g.rules = append(g.rules[:i], g.rules[i+1:]...)
		}
		break
	}
	g.mu.Unlock()

	if hit == nil {
		return nil
	}
	out := hit.Outcome
	if hit.Gen != nil {
		out = hit.Gen(req.URL, hit.Pattern.FindStringSubmatch(req.URL))
	}
	return &Resolution{RuleID: hit.ID, Outcome: out, Delay: hit.Delay}
}

// Clear empties the registry. Resolutions taken before the clear keep their
// captured outcome. Counters survive a clear.
func (g *Registry) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = nil
}

// Len reports the number of registered rules.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rules)
}

// Stats returns a copy of the lifetime resolution counters.
func (g *Registry) Stats() domain.EngineStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	by := make(map[domain.RuleID]int64, len(g.byRule))
	for k, v := range g.byRule {
		by[k] = v
	}
	return domain.EngineStats{Total: g.total, Matched: g.matched, ByRule: by}
}
