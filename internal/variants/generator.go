package variants

import (
	"context"
	"fmt"
	"strings"

	"github.com/memeulacra/memegen/internal/catalog"
	"github.com/memeulacra/memegen/internal/completion"
)

const (
	goalTemperature    = 0.7
	goalMaxTokens      = 700
	variantTemperature = 0.8
	variantMaxTokens   = 1500
)

const goalsSchema = `{"meme_goals": [{"goal": "string", "emotion": "string", "message": "string", "tone": 5, "impact": "string"}]}`

const variantsSchema = `{"text_choices": [{"box_count": 2, "text_1": "string", "text_2": "string"}]}`

// Completer is the slice of the completion client this package needs.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// Repairer parses model output, fixing malformed JSON once if needed.
// *jsonrepair.Repairer satisfies it.
type Repairer interface {
	ParseOrRepair(ctx context.Context, raw, schema string, target any) error
}

// Logger defines the logging operations the variants package needs.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Generator produces meme goals and caption variants through the completion
// client.
type Generator struct {
	completer Completer
	repairer  Repairer
	logger    Logger
}

func NewGenerator(completer Completer, repairer Repairer, logger Logger) *Generator {
	return &Generator{completer: completer, repairer: repairer, logger: logger}
}

// GenerateGoals derives numGoals strategic goals from the batch context.
func (g *Generator) GenerateGoals(ctx context.Context, batchContext string, numGoals int) ([]Goal, error) {
	raw, err := g.completer.Complete(ctx, completion.Request{
		System:      goalGenSystemPrompt,
		User:        formatGoalGenUserPrompt(batchContext, numGoals),
		MaxTokens:   goalMaxTokens,
		Temperature: goalTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("variants: goal generation: %w", err)
	}

	var parsed struct {
		MemeGoals []Goal `json:"meme_goals"`
	}
	if err := g.repairer.ParseOrRepair(ctx, raw, goalsSchema, &parsed); err != nil {
		return nil, fmt.Errorf("variants: goal parsing: %w", err)
	}

	g.logger.Debug("generated meme goals", nil, map[string]interface{}{
		"requested": numGoals,
		"received":  len(parsed.MemeGoals),
	})
	return parsed.MemeGoals, nil
}

// GenerateVariants produces numVariants caption sets for one template and
// goal. Historical examples are best-effort guidance; an empty Examples is
// fine.
func (g *Generator) GenerateVariants(ctx context.Context, tmpl catalog.Template, boxes []catalog.Box, goal Goal, batchContext string, examples Examples, numVariants int) ([]Variant, error) {
	raw, err := g.completer.Complete(ctx, completion.Request{
		System:      generateTextSystemPrompt,
		User:        formatGenerateTextUserPrompt(tmpl, boxes, goal, batchContext, examples, numVariants),
		MaxTokens:   variantMaxTokens,
		Temperature: variantTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("variants: text generation: %w", err)
	}

	var parsed struct {
		TextChoices []map[string]any `json:"text_choices"`
	}
	if err := g.repairer.ParseOrRepair(ctx, raw, variantsSchema, &parsed); err != nil {
		return nil, fmt.Errorf("variants: text parsing: %w", err)
	}

	out := make([]Variant, 0, len(parsed.TextChoices))
	for _, choice := range parsed.TextChoices {
		out = append(out, variantFromChoice(choice, tmpl.BoxCount))
	}

	g.logger.Debug("generated caption variants", nil, map[string]interface{}{
		"template":  tmpl.Name,
		"requested": numVariants,
		"received":  len(out),
	})
	return out, nil
}

// variantFromChoice normalizes one raw text choice. Historical responses
// use both "textN" and "text_N" keys; both are accepted, with the
// underscored form winning when both are present.
func variantFromChoice(choice map[string]any, defaultBoxCount int) Variant {
	v := Variant{BoxCount: defaultBoxCount}

	if n, ok := choice["box_count"]; ok {
		if f, ok := n.(float64); ok && f > 0 {
			v.BoxCount = int(f)
		}
	}

	for i := 1; i <= MaxSlots; i++ {
		v.Captions[i-1] = captionFor(choice, i)
	}
	return v
}

func captionFor(choice map[string]any, slot int) *string {
	for _, key := range []string{fmt.Sprintf("text_%d", slot), fmt.Sprintf("text%d", slot)} {
		raw, ok := choice[key]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return &trimmed
		}
	}
	return nil
}
