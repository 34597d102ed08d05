// Package gemini implements the oracle port against the Google GenAI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/observability"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

const providerName = "gemini"

// Client wraps the Google GenAI client behind the oracle port.
type Client struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

// New constructs a Gemini-backed oracle client.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = "gemini-2.5-pro"
	}
	return &Client{client: client, modelName: model, timeout: timeout}, nil
}

// Invoke sends one oracle request and concatenates the textual parts of the
// first response candidates.
func (c *Client) Invoke(ctx context.Context, req domain.OracleRequest) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: gemini client not initialized", domain.ErrInternal)
	}

	prompt := req.Instructions
	if req.Document != "" {
		prompt += "\n\nAttached document:\n\"\"\"\n" + req.Document + "\n\"\"\""
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
	observability.ObserveOracleCall(providerName, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return "", fmt.Errorf("op=gemini.Invoke: %w", err)
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if text := strings.TrimSpace(part.Text); text != "" {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(text)
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty gemini response", domain.ErrSchemaInvalid)
	}
	return b.String(), nil
}
