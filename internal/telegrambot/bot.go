// Package telegrambot hosts the command bot and digest delivery.
package telegrambot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/llm"
	"github.com/lueurxax/teledigest/internal/observability"
	"github.com/lueurxax/teledigest/internal/retrieval"
	"github.com/lueurxax/teledigest/internal/storage"
)

const (
	updateTimeout = 60
	deniedReply   = "You are not allowed to use this bot."
)

type Bot struct {
	cfg       *config.Config
	store     *storage.DB
	retriever *retrieval.Retriever
	llmClient llm.Client
	api       *tgbotapi.BotAPI
	allowlist config.Allowlist
	logger    *zerolog.Logger
}

func New(cfg *config.Config, store *storage.DB, retriever *retrieval.Retriever, llmClient llm.Client, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("bot api init: %w", err)
	}

	return &Bot{
		cfg:       cfg,
		store:     store,
		retriever: retriever,
		llmClient: llmClient,
		api:       api,
		allowlist: config.ParseAllowlist(cfg.AllowedUsersRaw),
		logger:    logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("Bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}

			if !b.allowlist.Allows(update.Message.From.ID, update.Message.From.UserName) {
				b.logger.Warn().
					Int64("user_id", update.Message.From.ID).
					Str("username", update.Message.From.UserName).
					Msg("Unauthorized access attempt")
				b.reply(update.Message, deniedReply)

				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}

	b.logger.Info().Str("command", msg.Command()).Int64("user_id", msg.From.ID).Msg("Handling command")
	observability.CommandsHandled.WithLabelValues(msg.Command()).Inc()

	switch msg.Command() {
	case "ping":
		b.handlePing(msg)
	case "today":
		b.handleToday(ctx, msg)
	case "status":
		b.handleStatus(ctx, msg)
	case "start", "help":
		b.handleHelp(msg)
	default:
		b.reply(msg, "Unknown command, see /help")
	}
}

// SendDigest posts digest text to the configured target, a numeric chat
// id or an @channel reference, chunked per the delivery contract.
func (b *Bot) SendDigest(_ context.Context, text string) error {
	for i, part := range ChunksWithFooter(text) {
		var msg tgbotapi.MessageConfig

		if chatID, err := strconv.ParseInt(b.cfg.SummaryTarget, 10, 64); err == nil {
			msg = tgbotapi.NewMessage(chatID, part)
		} else {
			target := b.cfg.SummaryTarget
			if !strings.HasPrefix(target, "@") {
				target = "@" + target
			}

			msg = tgbotapi.NewMessageToChannel(target, part)
		}

		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := b.api.Send(msg); err != nil {
			return fmt.Errorf("send digest part %d: %w", i+1, err)
		}
	}

	return nil
}

// reply sends text back to the chat the message arrived from, chunked
// when it exceeds the message budget.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	for _, part := range ChunksWithFooter(text) {
		reply := tgbotapi.NewMessage(msg.Chat.ID, part)
		reply.ParseMode = tgbotapi.ModeHTML
		reply.DisableWebPagePreview = true

		if _, err := b.api.Send(reply); err != nil {
			b.logger.Error().Err(err).Msg("failed to send reply")
		}
	}
}
