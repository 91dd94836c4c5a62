package telegrambot

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lueurxax/teledigest/internal/llm"
)

const (
	dateLayout     = "2006-01-02"
	noMessagesText = "No messages to summarize for the last 24 hours."

	helpText = `Commands:
/ping - check the bot is alive
/today - digest of the last 24 hours
/status - ingestion and schedule status
/help - this message`
)

func (b *Bot) handlePing(msg *tgbotapi.Message) {
	b.reply(msg, "pong")
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	msgs, err := b.retriever.RetrieveLast24h(ctx, b.cfg.MaxDigestDocs)
	if err != nil {
		b.logger.Error().Err(err).Msg("retrieval for /today failed")
		b.reply(msg, "Failed to load messages, try again later.")

		return
	}

	if len(msgs) == 0 {
		b.reply(msg, noMessagesText)

		return
	}

	day := time.Now().In(b.cfg.Location()).Format(dateLayout)

	summary, err := b.llmClient.Summarize(ctx, day, msgs)
	if err != nil {
		b.logger.Error().Err(err).Msg("summarization for /today failed")

		summary = llm.Placeholder(day, err)
	}

	b.reply(msg, summary)
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	stored, err := b.store.CountMessagesBetween(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Msg("status count failed")
	}

	relevant, err := b.retriever.Retrieve(ctx, start, end, b.cfg.MaxDigestDocs)
	if err != nil {
		b.logger.Error().Err(err).Msg("status retrieval failed")
	}

	day := end.In(b.cfg.Location()).Format(dateLayout)
	_, userPrompt := llm.BuildPrompt(b.cfg, day, relevant)

	var sb strings.Builder

	fmt.Fprintf(&sb, "Stored last 24h: %d\n", stored)
	fmt.Fprintf(&sb, "Digest candidates: %d\n", len(relevant))
	fmt.Fprintf(&sb, "Prompt size: %d chars\n", utf8.RuneCountInString(userPrompt))
	fmt.Fprintf(&sb, "Daily digest at %02d:%02d %s\n", b.cfg.SummaryHour, b.cfg.SummaryMinute, b.cfg.Timezone)
	fmt.Fprintf(&sb, "Model: %s\n", b.cfg.LLMModel)
	fmt.Fprintf(&sb, "Target: %s\n", b.cfg.SummaryTarget)
	fmt.Fprintf(&sb, "Channels: %s\n", strings.Join(b.cfg.TrackedChannels(), ", "))

	if keywords := b.cfg.Keywords(); len(keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(keywords, ", "))
	}

	if b.store.FTSAvailable() {
		sb.WriteString("Full-text index: available")
	} else {
		sb.WriteString("Full-text index: unavailable (range scans only)")
	}

	b.reply(msg, sb.String())
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.reply(msg, helpText)
}
