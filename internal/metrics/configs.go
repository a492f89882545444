package metrics

import "os"

type Config struct {
	// Address the /metrics HTTP server listens on, e.g. ":9090".
	Address string

	// ServiceName is added as a constant "service" label on every metric.
	ServiceName string

	// EnableDefaultCollectors registers the Go, process and build info collectors.
	EnableDefaultCollectors bool
}

// NewConfig reads from environment variables.
func NewConfig() Config {
	addr := os.Getenv("METRICS_ADDRESS")
	if addr == "" {
		addr = ":9090"
	}
	service := os.Getenv("METRICS_SERVICE_NAME")
	if service == "" {
		service = "memegen"
	}
	return Config{
		Address:                 addr,
		ServiceName:             service,
		EnableDefaultCollectors: os.Getenv("METRICS_DISABLE_DEFAULT_COLLECTORS") != "true",
	}
}
