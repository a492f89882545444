package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// defaultResetDelay is assumed when a reset timestamp is missing or malformed.
const defaultResetDelay = 60 * time.Second

// Quota is the observed state of a single provider quota dimension.
type Quota struct {
	// Remaining is the number of units left in the current window.
	Remaining int

	// Known reports whether the provider sent this dimension at all.
	Known bool

	// ResetAt is when the window replenishes.
	ResetAt time.Time
}

// Exhausted reports whether calls should wait for this dimension.
func (q Quota) Exhausted() bool {
	return q.Known && q.Remaining <= 0
}

// Snapshot captures the provider's rate limit headers at one point in time.
type Snapshot struct {
	Requests     Quota
	Tokens       Quota
	InputTokens  Quota
	OutputTokens Quota

	// RetryAfter is the provider's explicit backoff hint, zero if absent.
	RetryAfter time.Duration

	CapturedAt time.Time
}

// SnapshotFromHeaders parses the anthropic-ratelimit-* response headers.
// Dimensions the provider omitted stay unknown; a present remaining count
// with a missing or unparseable reset timestamp gets now+60s.
func SnapshotFromHeaders(h http.Header, now time.Time) Snapshot {
	s := Snapshot{
		Requests:     parseQuota(h, "anthropic-ratelimit-requests", now),
		Tokens:       parseQuota(h, "anthropic-ratelimit-tokens", now),
		InputTokens:  parseQuota(h, "anthropic-ratelimit-input-tokens", now),
		OutputTokens: parseQuota(h, "anthropic-ratelimit-output-tokens", now),
		CapturedAt:   now,
	}

	if v := h.Get("retry-after"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			s.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return s
}

func parseQuota(h http.Header, prefix string, now time.Time) Quota {
	remaining := h.Get(prefix + "-remaining")
	if remaining == "" {
		return Quota{}
	}
	n, err := strconv.Atoi(remaining)
	if err != nil {
		return Quota{}
	}

	resetAt := now.Add(defaultResetDelay)
	if v := h.Get(prefix + "-reset"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			resetAt = t
		}
	}

	return Quota{Remaining: n, Known: true, ResetAt: resetAt}
}

// WaitFor returns how long a caller must wait before the next call: the
// maximum over every exhausted dimension's time to reset and the retry-after
// hint. Zero when nothing is exhausted.
func (s Snapshot) WaitFor(now time.Time) time.Duration {
	var wait time.Duration

	for _, q := range []Quota{s.Requests, s.Tokens, s.InputTokens, s.OutputTokens} {
		if !q.Exhausted() {
			continue
		}
		if d := q.ResetAt.Sub(now); d > wait {
			wait = d
		}
	}

	if s.RetryAfter > wait {
		wait = s.RetryAfter
	}
	return wait
}
