package events

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the RabbitMQ settings for the batch event publisher.
type Config struct {
	Host     string
	Port     uint
	User     string
	Password string

	// Exchange is the durable topic exchange batch events are published to.
	Exchange string

	// RoutingKey routes completed batch announcements.
	RoutingKey string
}

func NewConfig() (*Config, error) {
	cfg := &Config{
		Host:       envOrDefault("RABBIT_HOST", "localhost"),
		User:       envOrDefault("RABBIT_USER", "guest"),
		Password:   envOrDefault("RABBIT_PASSWORD", "guest"),
		Exchange:   envOrDefault("EVENTS_EXCHANGE_NAME", "meme-events"),
		RoutingKey: envOrDefault("EVENTS_ROUTING_KEY", "meme.batch.completed"),
	}

	port := envOrDefault("RABBIT_PORT", "5672")
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("events: invalid RABBIT_PORT %q: %w", port, err)
	}
	cfg.Port = uint(p)

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("events: Host must not be empty")
	}
	if c.Exchange == "" {
		return fmt.Errorf("events: Exchange must not be empty")
	}
	if c.RoutingKey == "" {
		return fmt.Errorf("events: RoutingKey must not be empty")
	}
	return nil
}

func (c *Config) url() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d", c.User, c.Password, c.Host, c.Port)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
