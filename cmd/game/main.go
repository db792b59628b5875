package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vancomm/minesweeper/internal/app"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
)

var configPath string

func init() {
	const usage = "config file path"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
}

func newLogger(development bool) *slog.Logger {
	if development {
		return slog.New(
			tint.NewHandler(os.Stderr, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.Kitchen,
			}),
		)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

func main() {
	flag.Parse()

	logger := newLogger(config.Development())
	slog.SetDefault(logger)
	mines.Log = logger.With(slog.String("component", "mines"))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	jwt, err := config.NewJWT(cfg.Sessions.TTL)
	if err != nil {
		if !cfg.Development {
			logger.Error("failed to load session secret", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Warn("no session secret configured, using an ephemeral one")
		jwt, err = config.NewEphemeralJWT(cfg.Sessions.TTL)
		if err != nil {
			logger.Error("failed to generate session secret", slog.Any("error", err))
			os.Exit(1)
		}
	}

	a, err := app.New(logger, cfg, jwt)
	if err != nil {
		logger.Error("failed to configure app", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
