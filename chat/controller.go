package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ trickle.Completer = (*Controller)(nil)

// Controller runs streaming sessions against a provider. It holds exactly
// one cancellation handle: starting a new session replaces the handle of
// the previous one without cancelling it, so callers must not overlap
// sessions.
type Controller struct {
	provider  trickle.Provider
	completer trickle.Completer
	logger    zerolog.Logger

	mu         sync.Mutex
	state      State
	stopReason trickle.StopReason
	cancel     context.CancelFunc
	session    uint64
}

// Option configures a [Controller].
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithCompleter sets the backend used by Complete.
func WithCompleter(cp trickle.Completer) Option {
	return func(c *Controller) { c.completer = cp }
}

// New creates a [Controller] for provider.
func New(provider trickle.Provider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send runs one streaming session. onUpdate, which may be nil, is called on
// the calling goroutine with the full cumulative snapshot each time it
// changes, and never after Send returns.
//
// On completion Send returns the final snapshot. On cancellation it returns
// an empty snapshot and an error matching trickle.ErrCanceled. On failure
// it returns the partial snapshot and a *trickle.TransportError or
// *trickle.ProtocolError.
func (c *Controller) Send(ctx context.Context, req trickle.Request, onUpdate func(trickle.Snapshot)) (trickle.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	id := c.begin(cancel)

	stream, err := c.provider.Stream(ctx, req)
	if err != nil {
		return c.finish(ctx, id, trickle.Snapshot{}, "", err)
	}
	defer stream.Close()
	c.transition(id, StateStreaming)

	var in trickle.Interpreter
	for {
		if ctx.Err() != nil {
			return c.finish(ctx, id, in.Snapshot(), in.StopReason(), ctx.Err())
		}
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.finish(ctx, id, in.Snapshot(), in.StopReason(), err)
		}
		if !in.Apply(evt) {
			continue
		}
		if in.Halted() {
			return c.finish(ctx, id, in.Snapshot(), trickle.StopError, in.Err())
		}
		if onUpdate != nil {
			onUpdate(in.Snapshot())
		}
	}
	if ctx.Err() != nil {
		return c.finish(ctx, id, in.Snapshot(), in.StopReason(), ctx.Err())
	}
	return c.finish(ctx, id, in.Snapshot(), in.StopReason(), nil)
}

// Cancel aborts the in-flight session, if any, and reports whether there
// was one.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil || c.state.Terminal() {
		return false
	}
	c.cancel()
	return true
}

// State returns the lifecycle state of the latest session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StopReason returns the stop reason of the latest finished session.
func (c *Controller) StopReason() trickle.StopReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopReason
}

// Complete performs a request without incremental delivery and returns
// only the final answer text.
func (c *Controller) Complete(ctx context.Context, req trickle.Request) (string, error) {
	if c.completer == nil {
		return "", fmt.Errorf("chat: %w", trickle.ErrNoCompleter)
	}
	text, err := c.completer.Complete(ctx, req)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, trickle.ErrCanceled) {
			return "", trickle.Canceled(ctx.Err())
		}
		return "", err
	}
	return text, nil
}

func (c *Controller) begin(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session++
	c.cancel = cancel
	c.state = StateRequesting
	c.stopReason = ""
	c.logger.Debug().Uint64("session", c.session).Msg("session requesting")
	return c.session
}

// transition moves session id to state unless a newer session has started.
func (c *Controller) transition(id uint64, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.session {
		return
	}
	c.state = state
	c.logger.Debug().Uint64("session", id).Stringer("state", state).Msg("session state")
}

func (c *Controller) finish(ctx context.Context, id uint64, snap trickle.Snapshot, stop trickle.StopReason, err error) (trickle.Snapshot, error) {
	switch {
	case err == nil:
		c.record(id, StateCompleted, stop)
		c.logger.Info().Uint64("session", id).
			Int("text_bytes", len(snap.Text)).
			Int("thinking_bytes", len(snap.Thinking)).
			Str("stop_reason", string(stop)).
			Msg("session completed")
		return snap, nil
	case trickle.IsCanceled(err) || ctx.Err() != nil:
		c.record(id, StateCancelled, trickle.StopAborted)
		c.logger.Debug().Uint64("session", id).Msg("session cancelled")
		if !errors.Is(err, trickle.ErrCanceled) {
			err = trickle.Canceled(err)
		}
		return trickle.Snapshot{}, err
	default:
		c.record(id, StateFailed, trickle.StopError)
		c.logger.Warn().Uint64("session", id).Err(err).Msg("session failed")
		return snap, err
	}
}

func (c *Controller) record(id uint64, state State, stop trickle.StopReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != c.session {
		return
	}
	c.state = state
	c.stopReason = stop
	c.cancel = nil
}
