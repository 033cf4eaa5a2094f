// Package json implements [trickle.ConversationStore] as a single JSON file.
//
// The whole store is rewritten on every change using a temp file and a
// rename, so a crash leaves either the old or the new contents.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/trickle"
)

// envelope is the v1 wire format for the persisted store.
type envelope struct {
	Version       int               `json:"version"`
	Conversations []conversationDTO `json:"conversations"`
}

type conversationDTO struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Persona      string       `json:"persona,omitempty"`
	SystemPrompt string       `json:"system_prompt,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Messages     []messageDTO `json:"messages"`
}

// Interface compliance check.
var _ trickle.ConversationStore = (*Store)(nil)

// Store keeps all conversations in memory, newest first, and persists them
// to one file.
type Store struct {
	mu    sync.Mutex
	path  string
	convs []trickle.Conversation
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: read file: %w", err)
	}
	convs, err := UnmarshalConversations(data)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	s.convs = convs
	return s, nil
}

// MarshalConversations serializes conversations in v1 envelope format.
func MarshalConversations(convs []trickle.Conversation) ([]byte, error) {
	env := envelope{Version: 1, Conversations: make([]conversationDTO, len(convs))}
	for i, c := range convs {
		dto := conversationDTO{
			ID:           c.ID,
			Title:        c.Title,
			Persona:      c.Persona,
			SystemPrompt: c.SystemPrompt,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			Messages:     make([]messageDTO, len(c.Messages)),
		}
		for j, msg := range c.Messages {
			m, err := marshalMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("conversation %s: message %d: %w", c.ID, j, err)
			}
			dto.Messages[j] = m
		}
		env.Conversations[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversations deserializes conversations from v1 envelope format.
func UnmarshalConversations(data []byte) ([]trickle.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	convs := make([]trickle.Conversation, len(env.Conversations))
	for i, dto := range env.Conversations {
		msgs := make([]trickle.Message, len(dto.Messages))
		for j, m := range dto.Messages {
			msg, err := unmarshalMessage(m)
			if err != nil {
				return nil, fmt.Errorf("conversation %s: message %d: %w", dto.ID, j, err)
			}
			msgs[j] = msg
		}
		convs[i] = trickle.Conversation{
			ID:           dto.ID,
			Title:        dto.Title,
			Persona:      dto.Persona,
			SystemPrompt: dto.SystemPrompt,
			CreatedAt:    dto.CreatedAt,
			UpdatedAt:    dto.UpdatedAt,
			Messages:     msgs,
		}
	}
	return convs, nil
}

// List returns all conversations, most recently created first.
func (s *Store) List(_ context.Context) ([]trickle.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]trickle.Conversation, len(s.convs))
	for i, c := range s.convs {
		out[i] = clone(c)
	}
	return out, nil
}

// Get returns the conversation with its messages.
func (s *Store) Get(_ context.Context, id string) (trickle.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id)
	if err != nil {
		return trickle.Conversation{}, err
	}
	return clone(s.convs[i]), nil
}

// Create stores a new conversation ahead of all existing ones.
func (s *Store) Create(_ context.Context, c trickle.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("json: conversation has no ID: %w", trickle.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(c.ID); err == nil {
		return fmt.Errorf("json: conversation %s already exists: %w", c.ID, trickle.ErrValidation)
	}
	next := make([]trickle.Conversation, 0, len(s.convs)+1)
	next = append(next, clone(c))
	next = append(next, s.convs...)
	return s.commit(next)
}

// Messages returns the messages of a conversation.
func (s *Store) Messages(ctx context.Context, id string) ([]trickle.Message, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Messages, nil
}

// AppendMessage appends msg and bumps UpdatedAt.
func (s *Store) AppendMessage(_ context.Context, id string, msg trickle.Message) error {
	return s.update(id, func(c *trickle.Conversation) error {
		c.Messages = append(c.Messages, msg)
		c.UpdatedAt = time.Now()
		return nil
	})
}

// TrimLastAssistant removes the final message if it is an assistant reply.
func (s *Store) TrimLastAssistant(_ context.Context, id string) error {
	return s.update(id, func(c *trickle.Conversation) error {
		if _, ok := c.LastAssistant(); ok {
			c.Messages = c.Messages[:len(c.Messages)-1]
			c.UpdatedAt = time.Now()
		}
		return nil
	})
}

// Rename sets the conversation title.
func (s *Store) Rename(_ context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("json: empty title: %w", trickle.ErrValidation)
	}
	return s.update(id, func(c *trickle.Conversation) error {
		c.Title = title
		return nil
	})
}

// Delete removes a conversation.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id)
	if err != nil {
		return err
	}
	next := make([]trickle.Conversation, 0, len(s.convs)-1)
	next = append(next, s.convs[:i]...)
	next = append(next, s.convs[i+1:]...)
	return s.commit(next)
}

// update applies fn to a copy of conversation id and commits the result.
func (s *Store) update(id string, fn func(c *trickle.Conversation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id)
	if err != nil {
		return err
	}
	c := clone(s.convs[i])
	if err := fn(&c); err != nil {
		return err
	}
	next := make([]trickle.Conversation, len(s.convs))
	copy(next, s.convs)
	next[i] = c
	return s.commit(next)
}

// commit persists next and makes it current. The caller holds mu.
func (s *Store) commit(next []trickle.Conversation) error {
	data, err := MarshalConversations(next)
	if err != nil {
		return fmt.Errorf("json: marshal: %w", err)
	}
	if err := writeFile(s.path, data); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	s.convs = next
	return nil
}

func (s *Store) find(id string) (int, error) {
	for i, c := range s.convs {
		if c.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("json: conversation %s: %w", id, trickle.ErrNotFound)
}

func clone(c trickle.Conversation) trickle.Conversation {
	c.Messages = append([]trickle.Message(nil), c.Messages...)
	return c
}

// writeFile writes data atomically, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
