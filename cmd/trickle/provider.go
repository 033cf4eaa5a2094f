package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/anthropic"
	"github.com/fwojciec/trickle/gemini"
	"github.com/rs/zerolog"
)

// backend is a provider that also serves non-streaming requests.
type backend interface {
	trickle.Provider
	trickle.Completer
}

// resolveProvider constructs the provider named by cfg.
func resolveProvider(ctx context.Context, cfg trickle.Config, logger zerolog.Logger) (backend, error) {
	switch cfg.Provider {
	case trickle.ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithBaseURL(cfg.Endpoint),
			anthropic.WithLogger(logger.With().Str("component", "anthropic").Logger()),
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, anthropic.WithMaxTokens(cfg.MaxTokens))
		}
		return anthropic.New(cfg.APIKey, opts...), nil
	case trickle.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		opts := []gemini.Option{
			gemini.WithLogger(logger.With().Str("component", "gemini").Logger()),
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, gemini.WithMaxTokens(cfg.MaxTokens))
		}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		client, err := gemini.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be %q or %q", cfg.Provider, trickle.ProviderAnthropic, trickle.ProviderGemini)
	}
}
