// Package mock provides test doubles for trickle interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/trickle"
)

// Interface compliance checks.
var (
	_ trickle.Provider  = (*Provider)(nil)
	_ trickle.Completer = (*Completer)(nil)
)

// Provider is a test double for trickle.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req trickle.Request) (trickle.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
	return p.StreamFn(ctx, req)
}

// Completer is a test double for trickle.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req trickle.Request) (string, error)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, req trickle.Request) (string, error) {
	return c.CompleteFn(ctx, req)
}
