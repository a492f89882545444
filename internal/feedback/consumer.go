package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	traceSpan "go.opentelemetry.io/otel/trace"

	"github.com/memeulacra/memegen/internal/store"
)

// signalMessage is the wire format on the feedback topic.
type signalMessage struct {
	MemeID string `json:"meme_id"`
	Signal string `json:"signal"`
}

// FeedbackStore applies engagement votes. *store.Store satisfies it.
type FeedbackStore interface {
	ApplyFeedback(ctx context.Context, memeID string, signal store.FeedbackSignal) error
}

// reader is the slice of *kafka.Reader the consumer needs.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger defines the logging operations the feedback package needs.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Tracer continues the trace whose context arrived in the message headers.
type Tracer interface {
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
	StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span)
}

// Consumer reads engagement votes from Kafka and applies them to the
// store. Offsets are committed manually so a transient store failure is
// retried on the next fetch.
type Consumer struct {
	reader reader
	store  FeedbackStore
	tracer Tracer
	logger Logger
}

func NewConsumer(cfg *Config, st FeedbackStore, tracer Tracer, logger Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
		// Manual commits only.
		CommitInterval: 0,
	})
	return &Consumer{reader: r, store: st, tracer: tracer, logger: logger}
}

// newConsumerWithReader is the test seam.
func newConsumerWithReader(r reader, st FeedbackStore, tracer Tracer, logger Logger) *Consumer {
	return &Consumer{reader: r, store: st, tracer: tracer, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("feedback consumer started", nil, nil)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("feedback: fetching message: %w", err)
		}

		if c.process(ctx, msg) {
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("committing feedback offset failed", err, map[string]interface{}{
					"offset": msg.Offset,
				})
			}
		}
	}
}

// process handles one message and reports whether its offset should be
// committed. Malformed payloads and unknown memes are committed so they
// are never redelivered; transient store failures are not.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	ctx = c.tracer.SetCarrierOnContext(ctx, carrierFromHeaders(msg.Headers))
	ctx, span := c.tracer.StartSpan(ctx, "apply-feedback")
	defer span.End()

	var sm signalMessage
	if err := json.Unmarshal(msg.Value, &sm); err != nil {
		c.logger.Warn("skipping malformed feedback message", err, map[string]interface{}{
			"offset": msg.Offset,
		})
		return true
	}

	signal := store.FeedbackSignal(sm.Signal)
	if signal != store.FeedbackUp && signal != store.FeedbackDown {
		c.logger.Warn("skipping feedback with unknown signal", nil, map[string]interface{}{
			"meme_id": sm.MemeID,
			"signal":  sm.Signal,
		})
		return true
	}

	if err := c.store.ApplyFeedback(ctx, sm.MemeID, signal); err != nil {
		if errors.Is(err, store.ErrUnknownMemeIDs) {
			c.logger.Warn("skipping feedback for unknown meme", err, map[string]interface{}{
				"meme_id": sm.MemeID,
			})
			return true
		}
		c.logger.Error("applying feedback failed, will retry", err, map[string]interface{}{
			"meme_id": sm.MemeID,
		})
		return false
	}

	c.logger.Info("applied feedback", nil, map[string]interface{}{
		"meme_id": sm.MemeID,
		"signal":  sm.Signal,
	})
	return true
}

// carrierFromHeaders lifts trace headers the producer set on the message.
func carrierFromHeaders(headers []kafka.Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	carrier := make(map[string]string, len(headers))
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return carrier
}

// Close stops the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
