package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/babel/internal/api"
	"github.com/MikeSquared-Agency/babel/internal/chat"
	"github.com/MikeSquared-Agency/babel/internal/config"
	"github.com/MikeSquared-Agency/babel/internal/conversation"
	"github.com/MikeSquared-Agency/babel/internal/hermes"
	"github.com/MikeSquared-Agency/babel/internal/kv"
	"github.com/MikeSquared-Agency/babel/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg.LogLevel)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	logger.Info("babel starting", "port", cfg.Port, "store", cfg.StoreBackend)

	// Storage
	kvStore, err := kv.Open(ctx, storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	defer kvStore.Close()
	logger.Info("store ready", "backend", cfg.StoreBackend)

	// NATS/Hermes (optional, conversation events only)
	var notifier conversation.Notifier
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return fmt.Errorf("connect NATS: %w", err)
		}
		defer hermesClient.Close()
		notifier = hermesClient
		logger.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		logger.Warn("NATS_URL not set, conversation events disabled")
	}

	// Providers
	m := metrics.New()
	completion, transcription, err := buildProviders(cfg, m)
	if err != nil {
		return err
	}
	logger.Info("providers ready",
		"completion", cfg.CompletionProvider,
		"transcription", cfg.TranscriptionProvider,
	)

	store := conversation.NewStore(kvStore, notifier, logger)
	svc := chat.New(completion, transcription, cfg.DefaultLanguage, logger)

	srv := api.NewServer(cfg.Port, store, svc, m, logger)
	srv.SetMaxUploadBytes(int64(cfg.MaxUploadBytes))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("babel stopped")
	return nil
}

func storeOptions(cfg config.Config) kv.Options {
	return kv.Options{
		Backend:       cfg.StoreBackend,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		BoltPath:      cfg.BoltPath,
		SQLitePath:    cfg.SQLitePath,
	}
}
