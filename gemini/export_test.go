package gemini

import (
	"context"
	"iter"

	"github.com/fwojciec/trickle"
	"google.golang.org/genai"
)

// NewStreamFromIter creates a stream from a raw iterator for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) trickle.Stream {
	return newStream(ctx, seq)
}
