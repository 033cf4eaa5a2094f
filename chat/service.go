package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/pace"
	"github.com/rs/zerolog"
)

// Service runs exchanges for stored conversations: it reads history from
// the store, streams a reply through the Controller, paces the answer, and
// appends the finished assistant message.
type Service struct {
	ctrl      *Controller
	store     trickle.ConversationStore
	maxTokens int
	logger    zerolog.Logger
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithMaxTokens sets max_tokens on every request. Zero leaves the
// provider default.
func WithMaxTokens(n int) ServiceOption {
	return func(s *Service) { s.maxTokens = n }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a [Service].
func NewService(ctrl *Controller, store trickle.ConversationStore, opts ...ServiceOption) *Service {
	s := &Service{ctrl: ctrl, store: store, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Controller returns the underlying controller, for cancellation.
func (s *Service) Controller() *Controller { return s.ctrl }

// NewConversation creates and stores a conversation. first may be the zero
// UserMessage and persona may be nil.
func (s *Service) NewConversation(ctx context.Context, first trickle.UserMessage, persona *trickle.Persona) (trickle.Conversation, error) {
	if len(first.Content) > 0 {
		if err := trickle.ValidateMessage(first); err != nil {
			return trickle.Conversation{}, fmt.Errorf("chat: %w", err)
		}
	}
	conv := trickle.NewConversation(first, persona)
	if err := s.store.Create(ctx, conv); err != nil {
		return trickle.Conversation{}, fmt.Errorf("chat: create conversation: %w", err)
	}
	s.logger.Debug().Str("conversation", conv.ID).Str("persona", conv.Persona).Msg("conversation created")
	return conv, nil
}

// AddUserMessage appends a user message to a stored conversation.
func (s *Service) AddUserMessage(ctx context.Context, convID string, msg trickle.UserMessage) error {
	if err := trickle.ValidateMessage(msg); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := s.store.AppendMessage(ctx, convID, msg); err != nil {
		return fmt.Errorf("chat: append user message: %w", err)
	}
	return nil
}

// Send streams a reply to the stored history of convID.
//
// p, which may be nil, receives the answer text and is ticked by Send
// while the session runs. On completion Send waits for p to reveal the
// whole answer before the reply is stored, so persisted history is never
// shorter than what was shown. On cancellation p is reset and nothing is
// stored. On failure an error-flagged reply holding any partial text is
// stored and the error is returned.
func (s *Service) Send(ctx context.Context, convID, model string, p *pace.Pacer, onUpdate func(trickle.Snapshot)) (trickle.Snapshot, error) {
	conv, err := s.store.Get(ctx, convID)
	if err != nil {
		return trickle.Snapshot{}, fmt.Errorf("chat: %w", err)
	}
	if len(conv.Messages) == 0 {
		return trickle.Snapshot{}, fmt.Errorf("chat: conversation %s has no messages: %w", convID, trickle.ErrValidation)
	}
	req := BuildRequest(conv, model, s.maxTokens)

	snap, err := s.ctrl.SendPaced(ctx, req, p, onUpdate)
	switch {
	case err == nil:
		reply := trickle.AssistantMessage{
			Text:       snap.Text,
			Thinking:   snap.Thinking,
			StopReason: s.ctrl.StopReason(),
			Timestamp:  time.Now(),
		}
		if aerr := s.store.AppendMessage(ctx, convID, reply); aerr != nil {
			return snap, fmt.Errorf("chat: save reply: %w", aerr)
		}
		return snap, nil
	case trickle.IsCanceled(err):
		s.logger.Debug().Str("conversation", convID).Msg("exchange cancelled")
		return trickle.Snapshot{}, err
	default:
		reply := trickle.AssistantMessage{
			Text:       snap.Text,
			Thinking:   snap.Thinking,
			StopReason: trickle.StopError,
			IsError:    true,
			Error:      err.Error(),
			Timestamp:  time.Now(),
		}
		if aerr := s.store.AppendMessage(ctx, convID, reply); aerr != nil {
			s.logger.Error().Err(aerr).Str("conversation", convID).Msg("saving error reply")
		}
		return snap, err
	}
}

// Retry drops the last assistant reply of convID, if any, and sends the
// remaining history again.
func (s *Service) Retry(ctx context.Context, convID, model string, p *pace.Pacer, onUpdate func(trickle.Snapshot)) (trickle.Snapshot, error) {
	if err := s.store.TrimLastAssistant(ctx, convID); err != nil {
		return trickle.Snapshot{}, fmt.Errorf("chat: %w", err)
	}
	return s.Send(ctx, convID, model, p, onUpdate)
}

// Cancel aborts the running exchange, if any.
func (s *Service) Cancel() bool { return s.ctrl.Cancel() }
