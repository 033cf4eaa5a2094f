package trickle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// DefaultTitle names a conversation that has no text to derive a title from.
const DefaultTitle = "New Chat"

// titleWidth is the display width of a derived title before the ellipsis.
const titleWidth = 50

// Conversation is an ordered exchange of messages. When Persona is set the
// conversation runs under that persona's system prompt and only the most
// recent message is sent upstream.
type Conversation struct {
	ID           string
	Title        string
	Persona      string
	SystemPrompt string
	Messages     []Message
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewConversation starts a conversation. first may be the zero UserMessage,
// in which case the conversation starts empty. persona may be nil.
func NewConversation(first UserMessage, persona *Persona) Conversation {
	now := time.Now()
	c := Conversation{
		ID:        uuid.New().String(),
		Title:     TitleFromText(first.Text()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if persona != nil {
		c.Persona = persona.ID
		c.SystemPrompt = persona.SystemPrompt
		if first.Text() == "" {
			c.Title = persona.Name
		}
	}
	if len(first.Content) > 0 {
		if first.Timestamp.IsZero() {
			first.Timestamp = now
		}
		c.Messages = []Message{first}
	}
	return c
}

// TitleFromText derives a title from the first line of text, truncated to
// 50 display cells with a trailing ellipsis.
func TitleFromText(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return DefaultTitle
	}
	if runewidth.StringWidth(text) <= titleWidth {
		return text
	}
	return runewidth.Truncate(text, titleWidth, "") + "..."
}

// LastAssistant returns the final message if it is an assistant message.
func (c Conversation) LastAssistant() (AssistantMessage, bool) {
	if len(c.Messages) == 0 {
		return AssistantMessage{}, false
	}
	am, ok := c.Messages[len(c.Messages)-1].(AssistantMessage)
	return am, ok
}

// ConversationStore holds conversations and persists them. List returns
// the most recently created conversation first. Methods taking an ID
// return an error matching ErrNotFound for unknown IDs.
type ConversationStore interface {
	List(ctx context.Context) ([]Conversation, error)
	Get(ctx context.Context, id string) (Conversation, error)
	Create(ctx context.Context, c Conversation) error
	Messages(ctx context.Context, id string) ([]Message, error)
	AppendMessage(ctx context.Context, id string, msg Message) error
	// TrimLastAssistant removes the final message when it is an assistant
	// message. It is a no-op otherwise.
	TrimLastAssistant(ctx context.Context, id string) error
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}
