// Package telegramreader ingests channel messages over MTProto.
//
// The reader authenticates as a regular user account, joins every
// configured channel at startup and then consumes the update stream:
// each new channel message from a tracked peer is sanitized and written
// to the message store. Messages from untracked peers (groups the
// account happens to be in) are ignored.
package telegramreader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/observability"
	"github.com/lueurxax/teledigest/internal/sanitize"
	"github.com/lueurxax/teledigest/internal/storage"
)

// ErrChannelNotFound indicates the channel was not found.
var ErrChannelNotFound = errors.New("channel not found")

// ErrNotAChannel indicates the peer is not a channel.
var ErrNotAChannel = errors.New("peer is not a channel")

const alreadyParticipant = "USER_ALREADY_PARTICIPANT"

type Reader struct {
	cfg    *config.Config
	store  *storage.DB
	logger *zerolog.Logger

	client *telegram.Client

	// Tracked peer id -> configured channel name. Built once during the
	// join phase, read-only afterwards, so the update handler needs no
	// locking.
	peers map[int64]string
}

func New(cfg *config.Config, store *storage.DB, logger *zerolog.Logger) *Reader {
	return &Reader{
		cfg:    cfg,
		store:  store,
		logger: logger,
		peers:  make(map[int64]string),
	}
}

func (r *Reader) Run(ctx context.Context) error {
	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewChannelMessage(r.onChannelMessage)

	client := telegram.NewClient(r.cfg.TGAPIID, r.cfg.TGAPIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{
			Path: r.cfg.TGSessionPath,
		},
		UpdateHandler: dispatcher,
	})

	r.client = client

	return client.Run(ctx, func(ctx context.Context) error {
		if err := client.Auth().IfNecessary(ctx, r.authFlow()); err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		r.logger.Info().Msg("Successfully authenticated as user")

		api := tg.NewClient(client)

		if err := r.joinChannels(ctx, api); err != nil {
			return err
		}

		r.logger.Info().Int("channels", len(r.peers)).Msg("Tracking channels, waiting for updates")

		<-ctx.Done()

		return ctx.Err()
	})
}

// joinChannels resolves every configured channel, joins it and records
// its peer id so the update handler can recognize tracked sources.
func (r *Reader) joinChannels(ctx context.Context, api *tg.Client) error {
	for _, ref := range r.cfg.TrackedChannels() {
		name := strings.TrimPrefix(ref, "@")

		channel, err := r.resolveChannel(ctx, api, name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}

		_, err = api.ChannelsJoinChannel(ctx, &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		})
		if err != nil && !tgerr.Is(err, alreadyParticipant) {
			return fmt.Errorf("join %s: %w", name, err)
		}

		r.peers[channel.ID] = name

		r.logger.Info().Str("channel", name).Int64("peer_id", channel.ID).Str("title", channel.Title).Msg("Tracking channel")
	}

	return nil
}

func (r *Reader) resolveChannel(ctx context.Context, api *tg.Client, name string) (*tg.Channel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: name})
	if err != nil {
		return nil, fmt.Errorf("resolve username: %w", err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}

	channel, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAChannel, name)
	}

	return channel, nil
}

func (r *Reader) onChannelMessage(ctx context.Context, _ tg.Entities, update *tg.UpdateNewChannelMessage) error {
	msg, ok := update.Message.(*tg.Message)
	if !ok {
		return nil
	}

	peer, ok := msg.PeerID.(*tg.PeerChannel)
	if !ok {
		return nil
	}

	name, tracked := r.peers[peer.ChannelID]
	if !tracked {
		return nil
	}

	text := sanitize.Sanitize(msg.Message)
	if text == "" {
		observability.MessagesDropped.WithLabelValues(name, "empty_after_sanitize").Inc()

		return nil
	}

	id := fmt.Sprintf("%s_%d", name, msg.ID)
	date := time.Unix(int64(msg.Date), 0).UTC()

	status, err := r.store.SaveMessage(ctx, id, name, date, text)
	if err != nil {
		r.logger.Error().Err(err).Str("channel", name).Int("msg_id", msg.ID).Msg("failed to save message")
		observability.MessagesDropped.WithLabelValues(name, "store_error").Inc()

		return nil
	}

	if status == storage.IndexUnavailable {
		observability.IndexWriteFailures.Inc()
	}

	observability.MessagesIngested.WithLabelValues(name).Inc()
	r.logger.Debug().Str("channel", name).Int("msg_id", msg.ID).Msg("message ingested")

	return nil
}
