// Package ai generates lesson, quiz and flashcard content through an
// OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config controls the generation client.
type Config struct {
	APIKey     string
	BaseURL    string // empty means the default OpenAI endpoint
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		Timeout:    60 * time.Second,
	}
}

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("ai: no API key configured")

// Generator produces study content. A Generator without an API key is
// valid but refuses every call with ErrDisabled, which lets the server
// boot without credentials.
type Generator struct {
	cfg    Config
	client *openai.Client
	logger *zap.Logger
}

// NewGenerator builds a Generator, filling zero config fields from
// DefaultConfig.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &Generator{cfg: cfg, client: client, logger: logger}
}

// Enabled reports whether content generation is available.
func (g *Generator) Enabled() bool {
	return g.client != nil
}

// chat runs one completion round and returns the raw assistant text.
func (g *Generator) chat(ctx context.Context, system, user string) (string, error) {
	if g.client == nil {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
	}

	var resp openai.ChatCompletionResponse
	err := g.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(ctx, req)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// withRetry runs fn up to MaxRetries times with exponential backoff,
// respecting context cancellation between attempts.
func (g *Generator) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == g.cfg.MaxRetries-1 {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		g.logger.Warn("completion attempt failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
