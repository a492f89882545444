package ratelimit

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"
)

// Logger defines the logging operations the ratelimit package needs.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Observer receives the pre-call waits the governor imposes. *metrics.Metrics
// satisfies it.
type Observer interface {
	ObserveGovernorWait(d time.Duration)
}

// Governor throttles provider calls based on the latest quota snapshot.
// All methods are safe for concurrent use.
type Governor struct {
	snapshot atomic.Pointer[Snapshot]

	logger   Logger
	observer Observer

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGovernor creates a Governor with no recorded snapshot. observer may be nil.
func NewGovernor(logger Logger, observer Observer) *Governor {
	return &Governor{
		logger:   logger,
		observer: observer,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Record replaces the stored snapshot with one parsed from the given response
// headers. The newest response wins regardless of which worker got it first.
func (g *Governor) Record(h http.Header) {
	s := SnapshotFromHeaders(h, g.now())
	g.snapshot.Store(&s)
}

// BeforeCall blocks until every exhausted quota dimension has replenished.
// It returns early only when the context is done, with the context's error.
// With no snapshot recorded yet it returns immediately.
func (g *Governor) BeforeCall(ctx context.Context) error {
	s := g.snapshot.Load()
	if s == nil {
		return nil
	}

	wait := s.WaitFor(g.now())
	if wait <= 0 {
		return nil
	}

	g.logger.Warn("rate limit exhausted, pausing before provider call", nil, map[string]interface{}{
		"wait_seconds": wait.Seconds(),
	})
	if g.observer != nil {
		g.observer.ObserveGovernorWait(wait)
	}

	return g.sleep(ctx, wait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
