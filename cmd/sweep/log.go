package main

import (
	"io"
	"log/slog"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper/internal/mines"
)

var log = logrus.New()

// setupLogging routes logs to a rotating file, since the terminal belongs to
// the game. Without a file everything is discarded. The returned func
// flushes the engine's log bridge.
func setupLogging(path string, debug bool) (func(), error) {
	log.SetOutput(io.Discard)
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if path == "" {
		mines.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
		return func() {}, nil
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      level,
		Formatter: &logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		},
	})
	if err != nil {
		return nil, err
	}
	log.AddHook(hook)

	engineLog := log.WriterLevel(logrus.DebugLevel)
	mines.Log = slog.New(slog.NewTextHandler(engineLog, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})).With(slog.String("component", "mines"))

	return func() { engineLog.Close() }, nil
}
