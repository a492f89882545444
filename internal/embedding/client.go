package embedding

import (
	"context"
	"fmt"
)

// Client is the public entrypoint for computing embeddings.
//
// It hides all provider details (inference endpoints, HTTP, etc.)
// from the application layer.
type Client struct {
	provider   Provider
	model      string
	vectorSize int
}

// Provider computes embeddings against some backend.
type Provider interface {
	Create(ctx context.Context, model string, texts ...string) ([][]float32, error)
}

// NewClient constructs a Client from Config. It validates the config and
// internally constructs the inference provider. Application code should
// depend on *Client, not on Provider.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	return &Client{provider: p, model: cfg.Model, vectorSize: cfg.VectorSize}, nil
}

// Embed computes the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.provider.Create(ctx, c.model, text)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding: expected 1 vector, got %d", len(vectors))
	}
	if c.vectorSize > 0 && len(vectors[0]) != c.vectorSize {
		return nil, fmt.Errorf("embedding: vector size %d does not match configured %d", len(vectors[0]), c.vectorSize)
	}
	return vectors[0], nil
}

// VectorSize reports the configured embedding dimension.
func (c *Client) VectorSize() int {
	return c.vectorSize
}
