package domain

type SessionID string
type RuleID string

// Verbosity controls which resolution outcomes are logged. Purely
// observational, no behavioral effect.
type Verbosity int32

const (
	VerbosityNone   Verbosity = iota // log nothing
	VerbosityMocked                  // log resolved requests
	VerbosityAll                     // also log pass-throughs and rejections
)

// Decision is the evaluator's verdict for a request no rule matches.
type Decision int

const (
	PassThrough Decision = iota
	Reject
)

// EngineStats counts resolution attempts per registry lifetime.
type EngineStats struct {
	Total   int64            `json:"total"`
	Matched int64            `json:"matched"`
	ByRule  map[RuleID]int64 `json:"byRule"`
}

// Intercept event types.
const (
	EventResolved = "resolved"
	EventPassed   = "passed"
	EventRejected = "rejected"
)

// InterceptEvent reports one resolution outcome.
type InterceptEvent struct {
	Type      string  `json:"type"`
	URL       string  `json:"url"`
	Method    string  `json:"method"`
	Rule      *RuleID `json:"rule"`
	Status    int     `json:"status"`
	Timestamp int64   `json:"timestamp"`
}
