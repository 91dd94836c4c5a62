package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/storage"
)

func TestBuildPrompt_Substitution(t *testing.T) {
	cfg := &config.Config{
		Timezone:   "Europe/Kyiv",
		UserPrompt: "Day {DAY} in {TIMEZONE}:\n{MESSAGES}",
	}

	msgs := []storage.StoredMessage{
		{Channel: "newsone", Text: "first item"},
		{Channel: "newstwo", Text: "second item"},
	}

	system, user := BuildPrompt(cfg, "2026-08-25", msgs)

	assert.Equal(t, defaultSystemPrompt, system)
	assert.Contains(t, user, "Day 2026-08-25 in Europe/Kyiv:")
	assert.Contains(t, user, "[newsone] first item")
	assert.Contains(t, user, "[newstwo] second item")
}

func TestBuildPrompt_CapsMessageCount(t *testing.T) {
	msgs := make([]storage.StoredMessage, maxPromptMessages+50)
	for i := range msgs {
		msgs[i] = storage.StoredMessage{Channel: "ch", Text: "item"}
	}

	_, user := BuildPrompt(&config.Config{Timezone: "UTC"}, "2026-08-25", msgs)

	assert.Equal(t, maxPromptMessages, strings.Count(user, "[ch]"))
}

func TestBuildPrompt_TruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("и", maxMessageRunes+100)

	_, user := BuildPrompt(&config.Config{Timezone: "UTC"}, "2026-08-25", []storage.StoredMessage{
		{Channel: "ch", Text: long},
	})

	assert.Contains(t, user, strings.Repeat("и", maxMessageRunes))
	assert.NotContains(t, user, strings.Repeat("и", maxMessageRunes+1))
}

func TestNew_MockSelection(t *testing.T) {
	for _, key := range []string{"", "mock"} {
		client := New(&config.Config{LLMAPIKey: key}, nil)

		_, ok := client.(*mockClient)
		assert.True(t, ok, "key %q must select the mock client", key)
	}
}

func TestMockSummarize(t *testing.T) {
	client := New(&config.Config{LLMAPIKey: "mock"}, nil)

	out, err := client.Summarize(context.Background(), "2026-08-25", []storage.StoredMessage{
		{Channel: "ch", Text: "item"},
	})

	assert.NoError(t, err)
	assert.Contains(t, out, "2026-08-25")
}

func TestPlaceholder(t *testing.T) {
	out := Placeholder("2026-08-25", assert.AnError)

	assert.Contains(t, out, "2026-08-25")
	assert.Contains(t, out, assert.AnError.Error())
}
