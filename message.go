package trickle

import (
	"strings"
	"time"
)

// Message is a sealed interface representing a conversation message.
// The unexported marker method prevents external implementations.
// Role() returns the message's role without requiring a type switch.
type Message interface {
	isMessage()
	Role() Role
}

// UserMessage represents a message from the user. Content holds the prompt
// text and any attachments.
type UserMessage struct {
	Content   []ContentBlock
	Timestamp time.Time
}

func (UserMessage) isMessage() {}

// Role returns RoleUser.
func (UserMessage) Role() Role { return RoleUser }

// Text returns the concatenated text blocks of the message.
func (m UserMessage) Text() string {
	var b strings.Builder
	for _, c := range m.Content {
		if tb, ok := c.(TextBlock); ok {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}

// NewUserMessage builds a UserMessage from prompt text and attachments.
func NewUserMessage(text string, attachments ...ContentBlock) UserMessage {
	content := make([]ContentBlock, 0, 1+len(attachments))
	content = append(content, TextBlock{Text: text})
	content = append(content, attachments...)
	return UserMessage{Content: content, Timestamp: time.Now()}
}

// AssistantMessage represents a finalized assistant turn. An error-flagged
// message keeps whatever text and thinking arrived before the failure.
type AssistantMessage struct {
	Text       string
	Thinking   string
	StopReason StopReason
	IsError    bool
	Error      string
	Timestamp  time.Time
}

func (AssistantMessage) isMessage() {}

// Role returns RoleAssistant.
func (AssistantMessage) Role() Role { return RoleAssistant }

// ContentBlock is a sealed interface representing a block of user content.
type ContentBlock interface {
	contentBlock()
}

// TextBlock contains text content.
type TextBlock struct {
	Text string
}

func (TextBlock) contentBlock() {}

// ImageBlock contains an attached image.
type ImageBlock struct {
	Data     []byte
	MimeType string
}

func (ImageBlock) contentBlock() {}

// Interface compliance checks.
var (
	_ Message = UserMessage{}
	_ Message = AssistantMessage{}

	_ ContentBlock = TextBlock{}
	_ ContentBlock = ImageBlock{}
)
