package anthropic

import (
	"context"
	"io"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
)

// NewStreamFromReader exposes the decoder pipeline for chunk-level tests.
func NewStreamFromReader(ctx context.Context, r io.Reader) trickle.Stream {
	return newStream(ctx, io.NopCloser(r), zerolog.Nop())
}

var RecordPayload = recordPayload
