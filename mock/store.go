package mock

import (
	"context"

	"github.com/fwojciec/trickle"
)

// Interface compliance check.
var _ trickle.ConversationStore = (*Store)(nil)

// Store is a test double for trickle.ConversationStore.
// Each method panics when its function field is nil.
type Store struct {
	ListFn              func(ctx context.Context) ([]trickle.Conversation, error)
	GetFn               func(ctx context.Context, id string) (trickle.Conversation, error)
	CreateFn            func(ctx context.Context, c trickle.Conversation) error
	MessagesFn          func(ctx context.Context, id string) ([]trickle.Message, error)
	AppendMessageFn     func(ctx context.Context, id string, msg trickle.Message) error
	TrimLastAssistantFn func(ctx context.Context, id string) error
	RenameFn            func(ctx context.Context, id, title string) error
	DeleteFn            func(ctx context.Context, id string) error
}

// List delegates to ListFn.
func (s *Store) List(ctx context.Context) ([]trickle.Conversation, error) {
	return s.ListFn(ctx)
}

// Get delegates to GetFn.
func (s *Store) Get(ctx context.Context, id string) (trickle.Conversation, error) {
	return s.GetFn(ctx, id)
}

// Create delegates to CreateFn.
func (s *Store) Create(ctx context.Context, c trickle.Conversation) error {
	return s.CreateFn(ctx, c)
}

// Messages delegates to MessagesFn.
func (s *Store) Messages(ctx context.Context, id string) ([]trickle.Message, error) {
	return s.MessagesFn(ctx, id)
}

// AppendMessage delegates to AppendMessageFn.
func (s *Store) AppendMessage(ctx context.Context, id string, msg trickle.Message) error {
	return s.AppendMessageFn(ctx, id, msg)
}

// TrimLastAssistant delegates to TrimLastAssistantFn.
func (s *Store) TrimLastAssistant(ctx context.Context, id string) error {
	return s.TrimLastAssistantFn(ctx, id)
}

// Rename delegates to RenameFn.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	return s.RenameFn(ctx, id, title)
}

// Delete delegates to DeleteFn.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.DeleteFn(ctx, id)
}
