package orchestrator

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls how much content the pipeline generates per batch.
type Config struct {
	// NumGoals is how many strategic goals are derived from the batch context.
	NumGoals int

	// TemplatesPerGoal is how many catalog templates are retrieved per goal.
	TemplatesPerGoal int

	// VariantsPerTemplate is how many caption sets are generated per
	// goal and template pair.
	VariantsPerTemplate int
}

func NewConfig() (*Config, error) {
	cfg := &Config{
		NumGoals:            intFromEnv("PIPELINE_NUM_GOALS", 2),
		TemplatesPerGoal:    intFromEnv("PIPELINE_TEMPLATES_PER_GOAL", 2),
		VariantsPerTemplate: intFromEnv("PIPELINE_VARIANTS_PER_TEMPLATE", 3),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.NumGoals < 1 {
		return fmt.Errorf("orchestrator: NumGoals must be at least 1")
	}
	if c.TemplatesPerGoal < 1 {
		return fmt.Errorf("orchestrator: TemplatesPerGoal must be at least 1")
	}
	if c.VariantsPerTemplate < 1 {
		return fmt.Errorf("orchestrator: VariantsPerTemplate must be at least 1")
	}
	return nil
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
