// Package openrouter implements ai.Analyzer on top of the OpenRouter
// chat/completions endpoint.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thomas-vilte/matetriage/internal/ai"
	domainErrors "github.com/thomas-vilte/matetriage/internal/errors"
	"github.com/thomas-vilte/matetriage/internal/logger"
	"github.com/thomas-vilte/matetriage/internal/models"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// maxErrorBody bounds how much of a failed response body is kept in the error.
	maxErrorBody = 4096
)

var _ ai.Analyzer = (*Client)(nil)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	referer    string
	title      string
	httpClient HTTPClient
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAttribution sets the HTTP-Referer and X-Title headers OpenRouter uses to
// attribute traffic to an app.
func WithAttribution(referer, title string) Option {
	return func(c *Client) {
		c.referer = referer
		c.title = title
	}
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
		title:      "matetriage",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalTokens      int     `json:"total_tokens"`
		Cost             float64 `json:"cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Complete sends one user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (models.Analysis, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	payload, err := json.Marshal(chatCompletionRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return models.Analysis{}, domainErrors.ErrBackend.WithError(err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.Analysis{}, domainErrors.ErrBackend.WithError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	log.Debug("calling openrouter API",
		"model", c.model,
		"prompt_length", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("openrouter request failed",
			"error", err,
			"model", c.model)
		return models.Analysis{}, domainErrors.ErrBackend.
			WithError(err).
			WithContext("provider", "openrouter").
			WithContext("endpoint", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Analysis{}, domainErrors.ErrBackend.WithError(err).WithContext("status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error("openrouter returned non-success status",
			"status", resp.StatusCode,
			"model", c.model)
		return models.Analysis{}, domainErrors.NewBackendError(resp.StatusCode, truncate(string(body)), nil).
			WithContext("provider", "openrouter").
			WithSuggestion(suggestionFor(resp.StatusCode))
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return models.Analysis{}, domainErrors.NewBackendError(resp.StatusCode, truncate(string(body)),
			fmt.Errorf("decoding completion response: %w", err))
	}

	if out.Error != nil && out.Error.Message != "" {
		return models.Analysis{}, domainErrors.NewBackendError(resp.StatusCode, out.Error.Message, nil).
			WithContext("provider", "openrouter")
	}

	var text string
	if len(out.Choices) > 0 {
		text = strings.TrimSpace(out.Choices[0].Message.Content)
	}
	if text == "" {
		return models.Analysis{}, domainErrors.ErrEmptyCompletion.
			WithContext("provider", "openrouter").
			WithContext("status", resp.StatusCode).
			WithContext("body", truncate(string(body)))
	}

	analysis := models.Analysis{
		Text:     text,
		Provider: c.GetProviderName(),
		Model:    c.model,
	}
	if out.Usage != nil {
		model := out.Model
		if model == "" {
			model = c.model
		}
		analysis.Usage = &models.TokenUsage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
			TotalTokens:  out.Usage.TotalTokens,
			CostUSD:      out.Usage.Cost,
			Model:        model,
			DurationMs:   time.Since(start).Milliseconds(),
		}
	}

	return analysis, nil
}

func (c *Client) GetModelName() string {
	return c.model
}

func (c *Client) GetProviderName() string {
	return "openrouter"
}

func suggestionFor(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Check the openrouter_api_key secret"
	case http.StatusPaymentRequired:
		return "The OpenRouter account has no credits left"
	case http.StatusTooManyRequests:
		return "OpenRouter rate limit reached; re-run later"
	case http.StatusBadRequest, http.StatusNotFound:
		return "Check that the model identifier exists on OpenRouter"
	default:
		return ""
	}
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
