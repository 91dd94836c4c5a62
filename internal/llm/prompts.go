package llm

import (
	"strings"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/storage"
)

const (
	// Caps keep the prompt bounded regardless of how noisy a day was.
	maxPromptMessages    = 500
	maxMessageRunes      = 500
	defaultSystemPrompt  = "You are an assistant that writes concise daily news digests from Telegram channel messages. Group related items, drop duplicates and write in plain language. Answer with the digest text only."
	defaultUserPromptTpl = "Summarize the following Telegram messages collected during the last 24 hours (day {DAY}, timezone {TIMEZONE}) into a short digest:\n\n{MESSAGES}"
)

// BuildPrompt renders the system and user prompts for one digest request.
// Templates come from config when set; {DAY}, {MESSAGES} and {TIMEZONE}
// are substituted in both.
func BuildPrompt(cfg *config.Config, day string, messages []storage.StoredMessage) (system, user string) {
	system = cfg.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	userTpl := cfg.UserPrompt
	if userTpl == "" {
		userTpl = defaultUserPromptTpl
	}

	rendered := renderMessages(messages)

	replacer := strings.NewReplacer(
		"{DAY}", day,
		"{MESSAGES}", rendered,
		"{TIMEZONE}", cfg.Timezone,
	)

	return replacer.Replace(system), replacer.Replace(userTpl)
}

func renderMessages(messages []storage.StoredMessage) string {
	if len(messages) > maxPromptMessages {
		messages = messages[:maxPromptMessages]
	}

	lines := make([]string, 0, len(messages))

	for _, m := range messages {
		text := m.Text
		if runes := []rune(text); len(runes) > maxMessageRunes {
			text = string(runes[:maxMessageRunes])
		}

		lines = append(lines, "["+m.Channel+"] "+text)
	}

	return strings.Join(lines, "\n")
}
