package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrTransientProvider marks failures that are plausibly temporary: quota
// exhaustion, provider-side errors, network trouble. Callers may retry after
// consulting the rate governor; anything else is a hard failure.
var ErrTransientProvider = errors.New("transient provider error")

// Governor paces calls against provider quota headers. *ratelimit.Governor
// satisfies it.
type Governor interface {
	BeforeCall(ctx context.Context) error
	Record(h http.Header)
}

// Request is a single completion call.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client is the public entrypoint for text completions.
//
// It hides all provider details (messages endpoint, HTTP, auth headers)
// from the application layer. Every call passes through the governor:
// wait before, record quota headers after.
type Client struct {
	provider Provider
	governor Governor
}

// NewClient constructs a Client from Config. It validates the config and
// internally constructs the messages provider. Application code should
// depend on *Client, not on Provider.
func NewClient(cfg *Config, governor Governor) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("completion: invalid config: %w", err)
	}

	p, err := newMessagesProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("completion: failed to create provider: %w", err)
	}

	return &Client{provider: p, governor: governor}, nil
}

// Complete executes a single completion request and returns the generated
// text. Quota headers are recorded even when the provider call fails, so an
// exhausted quota reported alongside a 429 still paces the next caller.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if err := c.governor.BeforeCall(ctx); err != nil {
		return "", fmt.Errorf("completion: interrupted while waiting for quota: %w", err)
	}

	resp, err := c.provider.Complete(ctx, req)
	if resp.Headers != nil {
		c.governor.Record(resp.Headers)
	}
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
