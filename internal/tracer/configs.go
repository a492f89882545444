package tracer

import "os"

type Config struct {
	ServiceName string
	AppEnv      string

	// EnableExport turns on the OTLP HTTP exporter. Endpoint and headers
	// follow the standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool
}

// NewConfig reads from environment variables.
func NewConfig() Config {
	service := os.Getenv("TRACER_SERVICE_NAME")
	if service == "" {
		service = "memegen"
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	return Config{
		ServiceName:  service,
		AppEnv:       env,
		EnableExport: os.Getenv("TRACER_ENABLE_EXPORT") == "true",
	}
}
