package api

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the HTTP API server settings.
type Config struct {
	Address string

	ReadTimeout time.Duration

	// WriteTimeout bounds a whole request. Batch generation calls the
	// model several times, so this is generous by default.
	WriteTimeout time.Duration
}

func NewConfig() (*Config, error) {
	cfg := &Config{
		Address:      envOrDefault("API_ADDRESS", ":8080"),
		ReadTimeout:  durationFromEnv("API_READ_TIMEOUT_SECONDS", 15*time.Second),
		WriteTimeout: durationFromEnv("API_WRITE_TIMEOUT_SECONDS", 10*time.Minute),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("api: Address must not be empty")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
