// Package llm turns a day's messages into a digest summary.
package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/storage"
)

type Client interface {
	Summarize(ctx context.Context, day string, messages []storage.StoredMessage) (string, error)
}

type mockClient struct {
	cfg *config.Config
}

func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == "mock" {
		return &mockClient{cfg: cfg}
	}

	return NewOpenAI(cfg, logger)
}

func (c *mockClient) Summarize(_ context.Context, day string, messages []storage.StoredMessage) (string, error) {
	return fmt.Sprintf("Mock digest for %s based on %d messages.", day, len(messages)), nil
}

// Placeholder converts a completion failure into deliverable text so the
// digest cycle completes instead of aborting.
func Placeholder(day string, err error) string {
	return fmt.Sprintf("Digest for %s is unavailable: summarization failed (%v).", day, err)
}
