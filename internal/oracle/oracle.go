// Package oracle asks an OpenAI-compatible chat model what two elements make
// when combined.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

var (
	// ErrNoAPIKey is returned by New when no API key is configured.
	ErrNoAPIKey = errors.New("oracle: no API key configured")

	// ErrMalformed is returned when the model answers with something that is
	// not a {"text","emoji"} object.
	ErrMalformed = errors.New("oracle: malformed completion")
)

// Completion is the model's answer for one pair.
type Completion struct {
	Name  string `json:"text" validate:"required,max=64"`
	Glyph string `json:"emoji" validate:"required,max=32"`
}

// Config configures the completion client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// RequestsPerMinute throttles outgoing calls. Zero means unlimited.
	RequestsPerMinute int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Model:             openai.GPT4oMini,
		RequestsPerMinute: 30,
		Timeout:           20 * time.Second,
	}
}

var validate = validator.New()

// Client implements the completion capability on top of go-openai.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	logger.Info("initializing completion client", "model", cfg.Model)
	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Prompt is the instruction sent for a pair. first and second are expected
// in sorted order so the same pair always produces the same request.
func Prompt(first, second string) string {
	return fmt.Sprintf(`You are a creative game AI. Combine %q and %q to create a new, single-word or short-phrase element. `+
		`Respond ONLY with a JSON object containing "text" (string) and "emoji" (string, single emoji). `+
		`Do not add any explanation or markdown formatting. Example: Water + Fire -> {"text": "Steam", "emoji": "💨"}`,
		first, second)
}

func (c *Client) Complete(ctx context.Context, first, second string) (Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("rate limit: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(first, second)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.Debug("requesting completion", "first", first, "second", second)
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("completion call failed", "error", err)
		return Completion{}, fmt.Errorf("completion call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: no choices", ErrMalformed)
	}
	c.logger.Debug("received completion", "finish_reason", resp.Choices[0].FinishReason)
	return Parse(resp.Choices[0].Message.Content)
}

// Parse decodes and validates a model answer. Markdown code fences around the
// object are tolerated.
func Parse(content string) (Completion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out Completion
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Completion{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out.Name = strings.TrimSpace(out.Name)
	out.Glyph = strings.TrimSpace(out.Glyph)
	if err := validate.Struct(out); err != nil {
		return Completion{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}
