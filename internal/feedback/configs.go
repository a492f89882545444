package feedback

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the Kafka settings for the feedback consumer.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string

	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

func NewConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}

	topic := os.Getenv("KAFKA_FEEDBACK_TOPIC")
	if topic == "" {
		topic = "meme-feedback"
	}

	groupID := os.Getenv("KAFKA_FEEDBACK_GROUP_ID")
	if groupID == "" {
		groupID = "memegen-feedback"
	}

	cfg := &Config{
		Brokers:  strings.Split(brokers, ","),
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("feedback: Brokers must not be empty")
	}
	if c.Topic == "" {
		return fmt.Errorf("feedback: Topic must not be empty")
	}
	if c.GroupID == "" {
		return fmt.Errorf("feedback: GroupID must not be empty")
	}
	return nil
}
