package trickle

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages: %w", ErrValidation)
	}
	for i, msg := range r.Messages {
		if err := ValidateMessage(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

// ValidateMessage checks that a message carries sendable content.
func ValidateMessage(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		if len(m.Content) == 0 {
			return fmt.Errorf("user message has no content: %w", ErrValidation)
		}
		blank := true
		for i, b := range m.Content {
			switch bl := b.(type) {
			case TextBlock:
				if strings.TrimSpace(bl.Text) != "" {
					blank = false
				}
			case ImageBlock:
				if bl.MimeType == "" || len(bl.Data) == 0 {
					return fmt.Errorf("content block %d: image needs data and mime type: %w", i, ErrValidation)
				}
				blank = false
			default:
				return fmt.Errorf("content block %d: unknown block type %T: %w", i, b, ErrValidation)
			}
		}
		if blank {
			return fmt.Errorf("user message is blank: %w", ErrValidation)
		}
		return nil
	case AssistantMessage:
		return nil
	default:
		return fmt.Errorf("unknown message type %T: %w", msg, ErrValidation)
	}
}
