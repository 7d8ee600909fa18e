// Package llm wraps the hosted text-generation API used to draft posts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/trendscanner-api/internal/config"
)

// ErrEmptyCompletion is returned when the API answers without any text
var ErrEmptyCompletion = errors.New("completion contained no content")

// Generator produces a raw draft completion for a keyword
type Generator interface {
	Generate(ctx context.Context, keyword string) (string, error)
}

// Client is a Generator backed by an OpenAI-compatible chat completions API
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	blogName    string
	language    string
	log         zerolog.Logger
}

// NewClient creates a chat completions client from configuration
func NewClient(cfg config.OpenAIConfig, post config.AutoPostConfig, log zerolog.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		blogName:    post.BlogName,
		language:    post.Language,
		log:         log.With().Str("client", "openai").Logger(),
	}
}

// Generate requests a draft for the keyword and returns the raw completion text
func (c *Client) Generate(ctx context.Context, keyword string) (string, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(c.blogName, c.language, keyword)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion for %q: %w", keyword, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	c.log.Debug().
		Str("keyword", keyword).
		Str("model", resp.Model).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("duration", time.Since(start)).
		Msg("Draft completion received")

	return resp.Choices[0].Message.Content, nil
}
