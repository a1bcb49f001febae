package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/config"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/serverapp"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfgPath := os.Getenv("WT_CONFIG")
	if cfgPath == "" {
		cfgPath = "worktracker.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}
	if err := cfg.ApplyEnv(); err != nil {
		logger.Fatal().Err(err).Msg("apply env overrides")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.Warn().Str("level", cfg.Logging.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Sweeper.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}
