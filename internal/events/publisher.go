package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const heartbeatInterval = 2 * time.Second

// BatchCompleted announces a finished meme batch to downstream consumers.
// The batch context itself is not included; only its digest travels on the
// wire.
type BatchCompleted struct {
	ContextDigest string    `json:"context_digest"`
	SlotIDs       []string  `json:"slot_ids"`
	Rendered      int       `json:"rendered"`
	Failed        int       `json:"failed"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Logger defines the logging operations the events package needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Publisher sends batch events to a durable topic exchange with publisher
// confirms enabled. Safe for concurrent use.
type Publisher struct {
	cfg    *Config
	logger Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher connects to the broker, enables confirm mode and declares
// the event exchange.
func NewPublisher(cfg *Config, logger Logger) (*Publisher, error) {
	conn, err := amqp.DialConfig(cfg.url(), amqp.Config{Heartbeat: heartbeatInterval})
	if err != nil {
		return nil, fmt.Errorf("events: connecting to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: opening channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: enabling publisher confirms: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: declaring exchange: %w", err)
	}

	logger.Info("connected to event broker", nil, map[string]interface{}{
		"exchange":    cfg.Exchange,
		"routing_key": cfg.RoutingKey,
	})
	return &Publisher{cfg: cfg, logger: logger, conn: conn, ch: ch}, nil
}

// PublishBatchCompleted sends one event and waits for the broker confirm.
// headers travel as AMQP message headers so consumers can pick up the
// trace context; nil is fine.
func (p *Publisher) PublishBatchCompleted(ctx context.Context, ev BatchCompleted, headers map[string]string) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: encoding event: %w", err)
	}

	var table amqp.Table
	if len(headers) > 0 {
		table = amqp.Table{}
		for k, v := range headers {
			table[k] = v
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
		p.cfg.Exchange,
		p.cfg.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			Headers:      table,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("events: publishing event: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for confirm: %w", ctx.Err())
	case <-confirm.Done():
	}
	if !confirm.Acked() {
		return fmt.Errorf("events: broker rejected event on %q", p.cfg.RoutingKey)
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			p.logger.Warn("closing event channel failed", err, nil)
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("events: closing connection: %w", err)
		}
		p.conn = nil
	}
	return nil
}
