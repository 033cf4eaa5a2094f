package trickle

import "context"

// Provider is a strategy pattern interface for model-serving backends.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Completer performs a request without incremental delivery and returns only
// the final answer text. Reasoning text is not retrievable in this mode.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
