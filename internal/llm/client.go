package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Request is one chat completion call. System may be empty.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client is any text-generation backend. Every pipeline stage and the web
// service talk to the model through this interface, which keeps tests on a
// deterministic stub.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	ModelVersion() string
}

// Config for the OpenAI client.
type Config struct {
	APIKey     string
	Model      string // Default: "gpt-4o-mini"
	BaseURL    string // Optional override for OpenAI-compatible endpoints
	MaxRetries int
	RetryDelay time.Duration
}

// OpenAIClient calls the OpenAI chat completions API with bounded retries
// and a fixed backoff between attempts.
type OpenAIClient struct {
	client     *openai.Client
	model      string
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewOpenAIClient creates a new client for the chat completions API.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger.Info("OpenAI client initialized",
		zap.String("model", cfg.Model),
		zap.Int("max_retries", cfg.MaxRetries))

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Complete sends one chat completion request and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying OpenAI request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			lastErr = fmt.Errorf("openai API error: %w", err)
			c.logger.Error("OpenAI API error", zap.Error(err), zap.Int("attempt", attempt+1))
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty response from openai")
			c.logger.Error("Empty response from OpenAI", zap.Int("attempt", attempt+1))
			continue
		}

		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// ModelVersion returns the configured model identifier.
func (c *OpenAIClient) ModelVersion() string {
	return c.model
}
