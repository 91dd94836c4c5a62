// Package app wires the components together and runs the service modes.
//
//   - reader: MTProto client ingesting tracked channels
//   - bot: command bot (/ping /today /status /help)
//   - digest: daily digest scheduler
//   - all: the three loops under one supervisor
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/digest"
	"github.com/lueurxax/teledigest/internal/llm"
	"github.com/lueurxax/teledigest/internal/observability"
	"github.com/lueurxax/teledigest/internal/retrieval"
	"github.com/lueurxax/teledigest/internal/storage"
	"github.com/lueurxax/teledigest/internal/telegrambot"
	"github.com/lueurxax/teledigest/internal/telegramreader"
)

const errBotInit = "bot initialization failed: %w"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	store  *storage.DB
	logger *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, store *storage.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.store, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunReader runs the reader mode.
func (a *App) RunReader(ctx context.Context) error {
	a.logger.Info().Msg("Starting reader mode")

	r := telegramreader.New(a.cfg, a.store, a.logger)

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("reader run: %w", err)
	}

	return nil
}

// RunBot runs the bot mode.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// RunDigest runs the digest mode.
func (a *App) RunDigest(ctx context.Context, once bool) error {
	a.logger.Info().Bool("once", once).Msg("Starting digest mode")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	s := a.newScheduler(b)

	if once {
		s.RunOnce(ctx)

		return nil
	}

	if err := s.Run(ctx); err != nil {
		return fmt.Errorf("digest run: %w", err)
	}

	return nil
}

// RunAll runs the reader, the bot and the scheduler in one process.
func (a *App) RunAll(ctx context.Context) error {
	a.logger.Info().Msg("Starting all modes")

	b, err := a.newBot()
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	s := a.newScheduler(b)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.RunReader(ctx) })
	g.Go(func() error { return b.Run(ctx) })
	g.Go(func() error { return s.Run(ctx) })

	return g.Wait()
}

func (a *App) newBot() (*telegrambot.Bot, error) {
	return telegrambot.New(a.cfg, a.store, a.newRetriever(), llm.New(a.cfg, a.logger), a.logger)
}

func (a *App) newScheduler(poster digest.Poster) *digest.Scheduler {
	return digest.New(
		a.cfg.SummaryHour,
		a.cfg.SummaryMinute,
		a.cfg.Location(),
		a.cfg.MaxDigestDocs,
		a.newRetriever(),
		llm.New(a.cfg, a.logger),
		poster,
		a.logger,
	)
}

func (a *App) newRetriever() *retrieval.Retriever {
	return retrieval.New(a.store, a.cfg.Keywords(), a.logger)
}
