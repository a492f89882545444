package store

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DbName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewConfig reads from environment variables.
func NewConfig() Config {
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("POSTGRES_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	maxOpen := 50
	if v := os.Getenv("POSTGRES_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxOpen = n
		}
	}

	return Config{
		Host:            os.Getenv("POSTGRES_HOST"),
		Port:            port,
		User:            os.Getenv("POSTGRES_USER"),
		Password:        os.Getenv("POSTGRES_PASSWORD"),
		DbName:          os.Getenv("POSTGRES_DB"),
		SSLMode:         sslMode,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    25,
		ConnMaxLifetime: time.Minute,
	}
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("store: missing POSTGRES_HOST")
	}
	if c.User == "" {
		return fmt.Errorf("store: missing POSTGRES_USER")
	}
	if c.DbName == "" {
		return fmt.Errorf("store: missing POSTGRES_DB")
	}
	return nil
}
