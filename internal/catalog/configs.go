package catalog

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int

	// Optional authentication token for secured deployments.
	ApiKey string

	// Collection holding the template vectors.
	Collection string

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	port := 6334
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			port = n
		}
	}

	collection := os.Getenv("QDRANT_COLLECTION")
	if collection == "" {
		collection = "meme_templates"
	}

	return &Config{
		Endpoint:           os.Getenv("QDRANT_ENDPOINT"),
		Port:               port,
		ApiKey:             os.Getenv("QDRANT_API_KEY"),
		Collection:         collection,
		CheckCompatibility: os.Getenv("QDRANT_CHECK_COMPATIBILITY") == "true",
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("catalog: missing QDRANT_ENDPOINT")
	}
	if c.Collection == "" {
		return fmt.Errorf("catalog: missing QDRANT_COLLECTION")
	}
	return nil
}
