package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/chat"
	trickjson "github.com/fwojciec/trickle/json"
	"github.com/fwojciec/trickle/sqlite"
	"github.com/rs/zerolog"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg     trickle.Config
	logger  zerolog.Logger
	store   trickle.ConversationStore
	ctrl    *chat.Controller
	svc     *chat.Service
	closers []io.Closer
}

// openApp wires the store, provider, and services for cfg.
func openApp(ctx context.Context, cfg trickle.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	a := &app{cfg: cfg}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logFile)

	store, err := openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	provider, err := resolveProvider(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ctrl = chat.New(provider,
		chat.WithCompleter(provider),
		chat.WithLogger(logger.With().Str("component", "controller").Logger()),
	)
	a.svc = chat.NewService(a.ctrl, store,
		chat.WithMaxTokens(cfg.MaxTokens),
		chat.WithServiceLogger(logger.With().Str("component", "service").Logger()),
	)
	logger.Debug().
		Str("provider", cfg.Provider).
		Str("endpoint", cfg.Endpoint).
		Str("model", cfg.Model).
		Str("store", cfg.StoreDriver).
		Msg("app ready")
	return a, nil
}

// Close releases the store and log file.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func openStore(ctx context.Context, cfg trickle.Config) (trickle.ConversationStore, error) {
	switch cfg.StoreDriver {
	case trickle.StoreSQLite:
		return sqlite.Open(ctx, cfg.StorePath)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o700); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		return trickjson.Open(cfg.StorePath)
	}
}

// openLogger writes JSON logs to cfg.LogPath. The terminal belongs to the
// TUI, so nothing is logged to stderr.
func openLogger(cfg trickle.Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("config: log_level: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f, nil
}
