package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/sanitize"
	"github.com/lueurxax/teledigest/internal/storage"
)

const (
	completionTemperature = 0.4

	// One request per second with a small burst is far below any provider
	// limit and keeps /today spam from stacking requests.
	requestsPerSecond = 1
	requestBurst      = 3
)

type openaiClient struct {
	cfg         *config.Config
	client      *openai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

func NewOpenAI(cfg *config.Config, logger *zerolog.Logger) Client {
	clientCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientCfg.BaseURL = cfg.LLMBaseURL
	}

	return &openaiClient{
		cfg:         cfg,
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

func (c *openaiClient) Summarize(ctx context.Context, day string, messages []storage.StoredMessage) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	system, user := BuildPrompt(c.cfg, day, messages)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.LLMModel,
		Temperature: completionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion for %s returned no choices", day)
	}

	c.logger.Debug().
		Str("model", c.cfg.LLMModel).
		Int("messages", len(messages)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("digest summarized")

	return sanitize.StripMarkdownFence(resp.Choices[0].Message.Content), nil
}
