package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/trickle"
	"google.golang.org/genai"
)

// stream implements [trickle.Stream] by wrapping the genai SDK's streaming
// iterator. One response chunk may carry several parts, so decoded events
// are queued and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   trickle.StreamState
	pending []trickle.Event
	err     error
}

// Interface compliance check.
var _ trickle.Stream = (*stream)(nil)

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: trickle.StreamStateNew,
	}
}

// Next returns the next semantic event and io.EOF when the iterator is
// exhausted.
func (s *stream) Next() (trickle.Event, error) {
	switch s.state {
	case trickle.StreamStateComplete:
		return nil, io.EOF
	case trickle.StreamStateError:
		return nil, s.err
	case trickle.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", trickle.ErrStreamClosed)
	}

	for len(s.pending) == 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, s.fail(trickle.Canceled(err))
		}
		resp, err, ok := s.pull()
		if !ok {
			s.state = trickle.StreamStateComplete
			return nil, io.EOF
		}
		if err != nil {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				return nil, s.fail(trickle.Canceled(ctxErr))
			}
			return nil, s.fail(&trickle.TransportError{Err: fmt.Errorf("gemini: %w", err)})
		}
		s.state = trickle.StreamStateStreaming
		s.pending = chunkEvents(resp)
	}

	evt := s.pending[0]
	s.pending = s.pending[1:]
	return evt, nil
}

// State returns the current stream state.
func (s *stream) State() trickle.StreamState {
	return s.state
}

// Close stops the underlying iterator.
func (s *stream) Close() error {
	if s.state != trickle.StreamStateComplete && s.state != trickle.StreamStateError {
		s.state = trickle.StreamStateClosed
	}
	s.stop()
	return nil
}

func (s *stream) fail(err error) error {
	s.state = trickle.StreamStateError
	s.err = err
	return err
}

// chunkEvents maps one response chunk to events. A blocked prompt becomes
// an in-band error event.
func chunkEvents(resp *genai.GenerateContentResponse) []trickle.Event {
	if resp == nil {
		return nil
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return []trickle.Event{trickle.EventError{
				Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			}}
		}
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil {
		return nil
	}

	var events []trickle.Event
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p == nil || p.Text == "" {
				continue
			}
			if p.Thought {
				events = append(events, trickle.EventThinkingDelta{Delta: p.Text})
			} else {
				events = append(events, trickle.EventTextDelta{Delta: p.Text})
			}
		}
	}
	if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonUnspecified {
		events = append(events, trickle.EventMessageDelta{StopReason: string(cand.FinishReason)})
	}
	return events
}
