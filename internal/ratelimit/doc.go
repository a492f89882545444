// Package ratelimit paces outbound completion calls against provider quota
// headers.
//
// The provider reports four quota dimensions (requests, tokens, input tokens,
// output tokens) plus an optional retry-after hint on every response. The
// Governor keeps the most recent snapshot of those headers and, before each
// call, sleeps long enough for every exhausted dimension to replenish.
//
// The snapshot is held in an atomic pointer so concurrent workers share one
// Governor without locking. Recording is last-writer-wins; reading is a single
// pointer load.
package ratelimit
