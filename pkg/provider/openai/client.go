// Package openai is a client for OpenAI-compatible chat-completions endpoints
// (OpenAI, OpenRouter, and anything else that speaks the same wire format).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/pkg/llm"
	"github.com/papercomputeco/atelier/pkg/logger"
)

// DefaultBaseURL is the OpenRouter API base.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

var (
	// ErrNotConfigured is returned when no API key is available. It surfaces at
	// the first request, not at construction.
	ErrNotConfigured = errors.New("provider API key not configured")

	// ErrNoChoices is returned when the provider answers 2xx without any choices.
	ErrNoChoices = errors.New("provider returned no choices")
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Body)
}

// Client sends non-streamed chat-completion requests to a single base URL with
// a bearer credential.
type Client struct {
	baseURL    string
	apiKey     string
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a Client. An empty apiKey is accepted; Complete reports
// ErrNotConfigured when called.
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			// Reasoning models can take minutes before the first byte
			Timeout: 5 * time.Minute,
		},
	}
}

// Complete sends req and waits for the full completion.
func (c *Client) Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	// Ensure non-streaming
	req.Stream = false

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	c.logger.Debug("sending chat completion",
		zap.String("url", url),
		zap.String("model", req.Model),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := &APIError{Status: httpResp.StatusCode, Body: string(body)}
		var envelope llm.ProviderError
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	c.logger.Debug("received chat completion",
		zap.String("model", resp.Model),
		zap.String("content_preview", logger.Truncate(resp.Text(), 100)),
	)

	return &resp, nil
}
