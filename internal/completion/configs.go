package completion

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Provider endpoint and auth
	Endpoint     string // Base URL of the Anthropic-style messages API
	APIKey       string
	Model        string
	APIVersion   string // anthropic-version header value
	HTTPTimeoutS int    // HTTP timeout seconds (default 120)
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	timeout := 120
	if v := os.Getenv("COMPLETION_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}

	model := os.Getenv("COMPLETION_MODEL")
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	version := os.Getenv("COMPLETION_API_VERSION")
	if version == "" {
		version = "2023-06-01"
	}

	return &Config{
		Endpoint:     os.Getenv("COMPLETION_ENDPOINT"),
		APIKey:       os.Getenv("COMPLETION_API_KEY"),
		Model:        model,
		APIVersion:   version,
		HTTPTimeoutS: timeout,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("completion: missing COMPLETION_ENDPOINT")
	}
	if c.APIKey == "" {
		return fmt.Errorf("completion: missing COMPLETION_API_KEY")
	}
	return nil
}
