// Package openai implements the oracle port against an OpenAI-compatible
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/observability"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/config"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

const providerName = "openai"

// Client calls an OpenAI-compatible chat completions endpoint. One Invoke is
// one logical oracle call; transport-level retries with backoff happen
// inside it, and the caller sees a single success or failure.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client with the configured per-call timeout and an
// otel-instrumented transport.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.OracleTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends one oracle request and returns the raw completion text.
func (c *Client) Invoke(ctx context.Context, req domain.OracleRequest) (string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}

	body := chatRequest{
		Model:       c.cfg.OpenAIModel,
		Messages:    []chatMessage{{Role: "user", Content: composeContent(req)}},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.2,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("op=openai.Invoke: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	maxElapsed, initial, maxInterval, multiplier := c.cfg.OracleBackoffConfig()
	expo.MaxElapsedTime = maxElapsed
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier

	start := time.Now()
	var content string
	err = backoff.Retry(func() error {
		var attemptErr error
		content, attemptErr = c.attempt(ctx, payload)
		return attemptErr
	}, backoff.WithContext(expo, ctx))
	observability.ObserveOracleCall(providerName, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) attempt(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("op=openai.attempt: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("op=openai.attempt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("op=openai.attempt: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("oracle rate limited; backing off", slog.String("provider", providerName))
		return "", fmt.Errorf("%w: status 429", domain.ErrUpstreamRateLimit)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("op=openai.attempt: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		// Client errors won't heal on retry.
		return "", backoff.Permanent(fmt.Errorf("op=openai.attempt: status %d: %s", resp.StatusCode, snippet(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrSchemaInvalid, err))
	}
	if parsed.Error != nil {
		return "", backoff.Permanent(fmt.Errorf("op=openai.attempt: api error: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", backoff.Permanent(fmt.Errorf("%w: empty completion", domain.ErrSchemaInvalid))
	}
	return parsed.Choices[0].Message.Content, nil
}

func composeContent(req domain.OracleRequest) string {
	if req.Document == "" {
		return req.Instructions
	}
	return req.Instructions + "\n\nAttached document:\n\"\"\"\n" + req.Document + "\n\"\"\""
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}
