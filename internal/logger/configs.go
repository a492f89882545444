package logger

import "os"

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// 1. production -> INFO
	// 2. development -> DEBUG
	// else -> INFO
	Level string

	// ServiceName appears as the "service" field on every entry.
	ServiceName string
}

// NewConfig reads from environment variables.
func NewConfig() Config {
	service := os.Getenv("LOGGER_SERVICE_NAME")
	if service == "" {
		service = "memegen"
	}
	return Config{
		Level:       os.Getenv("ZAP_LOGGER_LEVEL"),
		ServiceName: service,
	}
}
