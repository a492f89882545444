package jsonrepair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/memeulacra/memegen/internal/completion"
)

// ErrRepairFailed means the raw text could not be parsed even after one
// model-assisted repair pass. Callers treat the payload as lost.
var ErrRepairFailed = errors.New("json repair failed")

const repairTemperature = 0.1

const repairSystemTemplate = `You are a JSON repair tool. You receive text that is supposed to be valid JSON but is malformed.

Respond with ONLY the corrected JSON, no commentary, no markdown fences.

The output must conform to this structure:
%s

Rules:
- Use double quotes for all keys and string values.
- Remove trailing commas.
- Escape literal newlines inside string values as \n.
- Do not add, remove or rename fields; only fix syntax.`

// Completer is the slice of the completion client this package needs.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// Logger defines the logging operations the jsonrepair package needs.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Repairer parses model output into typed values, with a single
// model-assisted repair attempt when the output is not valid JSON.
type Repairer struct {
	completer Completer
	logger    Logger
}

func NewRepairer(completer Completer, logger Logger) *Repairer {
	return &Repairer{completer: completer, logger: logger}
}

// ParseOrRepair unmarshals raw into target. On a parse failure it asks the
// model to fix the syntax exactly once (low temperature, schema example in
// the system instructions) and re-parses. A second failure returns
// ErrRepairFailed wrapping the final parse error.
//
// schema is a compact example of the expected document, rendered verbatim
// into the repair instructions.
func (r *Repairer) ParseOrRepair(ctx context.Context, raw, schema string, target any) error {
	cleaned := StripCodeFences(raw)

	firstErr := json.Unmarshal([]byte(cleaned), target)
	if firstErr == nil {
		return nil
	}

	r.logger.Warn("model output is not valid JSON, attempting repair", firstErr, map[string]interface{}{
		"raw_length": len(raw),
	})

	repaired, err := r.completer.Complete(ctx, completion.Request{
		System:      fmt.Sprintf(repairSystemTemplate, schema),
		User:        cleaned,
		MaxTokens:   4000,
		Temperature: repairTemperature,
	})
	if err != nil {
		return fmt.Errorf("%w: repair completion: %v (original parse error: %v)", ErrRepairFailed, err, firstErr)
	}

	if err := json.Unmarshal([]byte(StripCodeFences(repaired)), target); err != nil {
		return fmt.Errorf("%w: %v", ErrRepairFailed, err)
	}

	r.logger.Debug("repaired malformed JSON payload", nil, nil)
	return nil
}

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag. Text without fences passes through unchanged.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		// Drop the language tag line, e.g. "json".
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
