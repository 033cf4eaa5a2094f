package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/trickle"
	"github.com/rs/zerolog"
)

// stream implements [trickle.Stream] over a decoder.
type stream struct {
	body  io.ReadCloser
	dec   *decoder
	ctx   context.Context
	state trickle.StreamState
	err   error // terminal error, if any
}

// Interface compliance check.
var _ trickle.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger zerolog.Logger) *stream {
	return &stream{
		body:  body,
		dec:   newDecoder(body, logger),
		ctx:   ctx,
		state: trickle.StreamStateNew,
	}
}

// Next returns the next semantic event. It returns io.EOF once the body
// ends normally; a message_stop record is not required.
func (s *stream) Next() (trickle.Event, error) {
	switch s.state {
	case trickle.StreamStateComplete:
		return nil, io.EOF
	case trickle.StreamStateError:
		return nil, s.err
	case trickle.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", trickle.ErrStreamClosed)
	}

	for {
		p, err := s.dec.next()
		if err != nil {
			return nil, s.terminate(err)
		}
		s.state = trickle.StreamStateStreaming
		if evt := mapPayload(p); evt != nil {
			return evt, nil
		}
	}
}

// State returns the current stream state.
func (s *stream) State() trickle.StreamState {
	return s.state
}

// Close releases the response body.
func (s *stream) Close() error {
	if s.state != trickle.StreamStateComplete && s.state != trickle.StreamStateError {
		s.state = trickle.StreamStateClosed
	}
	return s.body.Close()
}

func (s *stream) terminate(err error) error {
	if errors.Is(err, io.EOF) {
		s.state = trickle.StreamStateComplete
		return io.EOF
	}
	s.state = trickle.StreamStateError
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = trickle.Canceled(ctxErr)
	} else {
		s.err = &trickle.TransportError{Err: fmt.Errorf("anthropic: read body: %w", err)}
	}
	return s.err
}

// mapPayload maps a decoded payload to an event. It returns nil for payload
// kinds that carry nothing the interpreter uses (pings, block starts).
func mapPayload(p ssePayload) trickle.Event {
	switch p.Type {
	case "content_block_delta":
		switch p.Delta.Type {
		case "text_delta":
			return trickle.EventTextDelta{Delta: p.Delta.Text}
		case "thinking_delta":
			return trickle.EventThinkingDelta{Delta: p.Delta.Thinking}
		}
		return nil
	case "message_delta":
		return trickle.EventMessageDelta{StopReason: p.Delta.StopReason}
	case "message_stop":
		return trickle.EventDone{}
	case "error":
		var msg string
		if p.Error != nil {
			msg = p.Error.Message
		}
		return trickle.EventError{Message: msg}
	default:
		return nil
	}
}
