package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider executes raw completion calls against some backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Response carries the generated text plus the raw response headers so the
// governor can read quota state from them.
type Response struct {
	Text    string
	Headers http.Header
}

type messagesProvider struct {
	baseURL    string
	apiKey     string
	model      string
	apiVersion string
	httpClient *http.Client
}

func newMessagesProvider(cfg *Config) (*messagesProvider, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("messages: missing COMPLETION_ENDPOINT")
	}

	// Remove trailing slash if user added it.
	base := strings.TrimRight(cfg.Endpoint, "/")

	return &messagesProvider{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
	}, nil
}

type messagesRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	System      string         `json:"system,omitempty"`
	Messages    []messagesTurn `json:"messages"`
}

type messagesTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete posts to the /v1/messages endpoint. Response headers are returned
// for every HTTP exchange, including failed ones. Status 429, 5xx and
// transport errors wrap ErrTransientProvider; other non-2xx codes are hard
// failures.
func (p *messagesProvider) Complete(ctx context.Context, req Request) (Response, error) {
	body := messagesRequest{
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages: []messagesTurn{
			{Role: "user", Content: req.User},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}

	url := p.baseURL + "/v1/messages"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", p.apiVersion)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: http error: %v", ErrTransientProvider, err)
	}
	defer httpResp.Body.Close()

	resp := Response{Headers: httpResp.Header}

	if httpResp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))

		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			return resp, fmt.Errorf("%w: http %d for %s", ErrTransientProvider, httpResp.StatusCode, url)
		}
		return resp, fmt.Errorf("http %d for %s", httpResp.StatusCode, url)
	}

	var parsed messagesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&parsed); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return resp, fmt.Errorf("messages: empty completion content")
	}

	resp.Text = sb.String()
	return resp, nil
}
