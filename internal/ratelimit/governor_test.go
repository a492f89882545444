package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}

func TestSnapshotFromHeaders(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(30 * time.Second)

	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-remaining", "0")
	h.Set("anthropic-ratelimit-requests-reset", reset.Format(time.RFC3339))
	h.Set("anthropic-ratelimit-tokens-remaining", "12000")
	h.Set("retry-after", "5")

	s := SnapshotFromHeaders(h, now)

	require.True(t, s.Requests.Known)
	assert.Equal(t, 0, s.Requests.Remaining)
	assert.True(t, s.Requests.ResetAt.Equal(reset))
	assert.True(t, s.Requests.Exhausted())

	require.True(t, s.Tokens.Known)
	assert.Equal(t, 12000, s.Tokens.Remaining)
	assert.False(t, s.Tokens.Exhausted())

	assert.False(t, s.InputTokens.Known, "absent dimension must stay unknown")
	assert.Equal(t, 5*time.Second, s.RetryAfter)
	assert.True(t, s.CapturedAt.Equal(now))
}

func TestSnapshotFromHeadersMissingResetDefaultsToSixtySeconds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h := http.Header{}
	h.Set("anthropic-ratelimit-tokens-remaining", "0")

	s := SnapshotFromHeaders(h, now)
	require.True(t, s.Tokens.Known)
	assert.True(t, s.Tokens.ResetAt.Equal(now.Add(60*time.Second)))
}

func TestSnapshotFromHeadersMalformedValues(t *testing.T) {
	now := time.Now()

	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-remaining", "not-a-number")
	h.Set("anthropic-ratelimit-tokens-remaining", "0")
	h.Set("anthropic-ratelimit-tokens-reset", "yesterday-ish")
	h.Set("retry-after", "soon")

	s := SnapshotFromHeaders(h, now)
	assert.False(t, s.Requests.Known)
	assert.True(t, s.Tokens.ResetAt.Equal(now.Add(60*time.Second)))
	assert.Zero(t, s.RetryAfter)
}

func TestWaitForPicksMaximumAcrossDimensions(t *testing.T) {
	now := time.Now()

	s := Snapshot{
		Requests:    Quota{Remaining: 0, Known: true, ResetAt: now.Add(10 * time.Second)},
		Tokens:      Quota{Remaining: 0, Known: true, ResetAt: now.Add(45 * time.Second)},
		InputTokens: Quota{Remaining: 900, Known: true, ResetAt: now.Add(90 * time.Second)},
		RetryAfter:  20 * time.Second,
	}

	assert.Equal(t, 45*time.Second, s.WaitFor(now), "wait must cover the slowest exhausted dimension")
}

func TestWaitForRetryAfterDominates(t *testing.T) {
	now := time.Now()

	s := Snapshot{
		Requests:   Quota{Remaining: 0, Known: true, ResetAt: now.Add(2 * time.Second)},
		RetryAfter: 30 * time.Second,
	}
	assert.Equal(t, 30*time.Second, s.WaitFor(now))
}

func TestWaitForNothingExhausted(t *testing.T) {
	now := time.Now()

	s := Snapshot{
		Requests: Quota{Remaining: 50, Known: true, ResetAt: now.Add(time.Minute)},
		Tokens:   Quota{Remaining: 100, Known: true, ResetAt: now.Add(time.Minute)},
	}
	assert.Zero(t, s.WaitFor(now))
}

func TestWaitForStaleResetInThePast(t *testing.T) {
	now := time.Now()

	s := Snapshot{
		Requests: Quota{Remaining: 0, Known: true, ResetAt: now.Add(-5 * time.Second)},
	}
	assert.Zero(t, s.WaitFor(now), "reset already passed, no wait due")
}

func TestGovernorBeforeCallWithoutSnapshot(t *testing.T) {
	g := NewGovernor(nopLogger{}, nil)
	require.NoError(t, g.BeforeCall(context.Background()))
}

func TestGovernorBeforeCallSleepsForExhaustedQuota(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	g := NewGovernor(nopLogger{}, nil)
	g.now = func() time.Time { return now }

	var slept time.Duration
	g.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	h := http.Header{}
	h.Set("anthropic-ratelimit-output-tokens-remaining", "0")
	h.Set("anthropic-ratelimit-output-tokens-reset", now.Add(15*time.Second).Format(time.RFC3339))
	g.Record(h)

	require.NoError(t, g.BeforeCall(context.Background()))
	assert.Equal(t, 15*time.Second, slept)
}

func TestGovernorRecordLastWriterWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	g := NewGovernor(nopLogger{}, nil)
	g.now = func() time.Time { return now }

	exhausted := http.Header{}
	exhausted.Set("anthropic-ratelimit-requests-remaining", "0")
	exhausted.Set("anthropic-ratelimit-requests-reset", now.Add(time.Minute).Format(time.RFC3339))
	g.Record(exhausted)

	healthy := http.Header{}
	healthy.Set("anthropic-ratelimit-requests-remaining", "99")
	g.Record(healthy)

	// The healthy snapshot replaced the exhausted one, so no wait remains.
	g.sleep = func(ctx context.Context, d time.Duration) error {
		t.Fatalf("unexpected sleep of %v", d)
		return nil
	}
	require.NoError(t, g.BeforeCall(context.Background()))
}

func TestGovernorBeforeCallHonorsContextCancellation(t *testing.T) {
	now := time.Now()

	g := NewGovernor(nopLogger{}, nil)

	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-remaining", "0")
	h.Set("anthropic-ratelimit-requests-reset", now.Add(time.Hour).Format(time.RFC3339))
	g.Record(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.BeforeCall(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
