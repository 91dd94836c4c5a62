package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/app"
	"github.com/lueurxax/teledigest/internal/config"
	"github.com/lueurxax/teledigest/internal/storage"
)

func main() {
	mode := flag.String("mode", "all", "Service mode (reader, bot, digest, all)")
	once := flag.Bool("once", false, "Run once and exit (for digest mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.DBPath, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}

	application := app.New(cfg, store, &logger)

	// Start health server in background
	go func() {
		if err := application.StartHealthServer(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runMode(ctx, application, *mode, *once); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string, once bool) error {
	switch mode {
	case "reader":
		return application.RunReader(ctx)
	case "bot":
		return application.RunBot(ctx)
	case "digest":
		return application.RunDigest(ctx, once)
	case "all":
		return application.RunAll(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[reader|bot|digest|all]", os.Args[0])

		return nil
	}
}
