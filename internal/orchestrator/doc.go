// Package orchestrator runs the meme batch pipeline end to end. A batch
// starts from a free-text context and a list of pre-created meme ids, and
// flows through goal generation, template search, caption generation,
// rendering and upload before the results are persisted. Slot failures are
// isolated; only validation and a fully empty content pool abort a batch.
package orchestrator
