// Package llm implements domain.ModelClient on top of the OpenAI chat
// completions API.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MADANW/MuhsinAI/internal/config"
	"github.com/MADANW/MuhsinAI/internal/domain"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a model client from configuration. BaseURL is optional
// and allows pointing at a compatible proxy.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "llm"),
	}
}

// Complete sends one prompt and returns the raw reply text. Scheduling-
// looking prompts get a hint so the model answers with structured JSON.
// Transport and upstream failures surface as ErrModelUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userMessage := prompt
	hinted := isSchedulingRequest(prompt)
	if hinted {
		userMessage += schedulingHint
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1500),
	})
	if err != nil {
		c.logger.Error("model request failed", "model", c.model, "error", err)
		return "", domain.NewModelUnavailableError(err)
	}

	if len(completion.Choices) == 0 {
		c.logger.Error("model returned no choices", "model", c.model)
		return "", domain.NewModelUnavailableError(fmt.Errorf("empty completion"))
	}

	reply := completion.Choices[0].Message.Content
	c.logger.Debug("model reply received",
		"model", c.model,
		"hinted", hinted,
		"reply_len", len(reply),
	)
	return reply, nil
}

// Ping sends a minimal completion to verify the upstream is reachable and
// the credential is valid.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello, please respond with just 'OK' to test the connection."),
		},
		MaxTokens: openai.Int(10),
	})
	if err != nil {
		return domain.NewModelUnavailableError(err)
	}
	return nil
}
