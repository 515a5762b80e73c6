package telemetry

import "time"

// Trace is a per-request observability record lifted off response
// headers by the HTTP client. It lives in the bus until dismissed.
type Trace struct {
	ID               int
	Agent            string
	Label            string
	LatencyMs        float64
	Model            string
	Status           string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	TraceID          string

	// observedAt is stamped the first time a renderer sees the trace;
	// the auto-dismiss countdown starts there, not at emission.
	observedAt time.Time
}

// Observed reports whether a renderer has seen this trace yet.
func (t *Trace) Observed() bool { return !t.observedAt.IsZero() }

// Remaining returns the time left before auto-dismiss, and false when
// the countdown has not started.
func (t *Trace) Remaining(now time.Time, ttl time.Duration) (time.Duration, bool) {
	if t.observedAt.IsZero() {
		return ttl, false
	}
	left := ttl - now.Sub(t.observedAt)
	if left < 0 {
		left = 0
	}
	return left, true
}
