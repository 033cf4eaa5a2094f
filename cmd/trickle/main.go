// Command trickle is a terminal chat client for a local model proxy.
//
// Usage:
//
//	trickle [command] [flags]
//
// With no command it opens the chat TUI. Settings are read from
// ~/.trickle/config.toml, then from the environment, then from flags:
//
//	TRICKLE_ENDPOINT  proxy base URL
//	TRICKLE_API_KEY   API key sent to the proxy
//	TRICKLE_MODEL     model ID
//	GEMINI_API_KEY    API key for the gemini provider
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Env vars are read here and passed down as values.
	env := environment{
		Endpoint:  os.Getenv("TRICKLE_ENDPOINT"),
		APIKey:    os.Getenv("TRICKLE_API_KEY"),
		Model:     os.Getenv("TRICKLE_MODEL"),
		GeminiKey: os.Getenv("GEMINI_API_KEY"),
	}
	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "trickle: %v\n", err)
		os.Exit(1)
	}
}
