package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/trickle"
)

const titleInstruction = "Write a short title, at most six words, for a conversation that starts with the message below. " +
	"Reply with the title only, without quotes or punctuation at the end."

// GenerateTitle asks completer for a short title for a conversation that
// opens with text. The reply is cleaned and truncated like a derived title.
func GenerateTitle(ctx context.Context, completer trickle.Completer, model, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return trickle.DefaultTitle, nil
	}
	reply, err := completer.Complete(ctx, trickle.Request{
		Model:        model,
		SystemPrompt: titleInstruction,
		Messages:     []trickle.Message{trickle.NewUserMessage(text)},
		MaxTokens:    64,
	})
	if err != nil {
		return "", err
	}
	return cleanTitle(reply), nil
}

func cleanTitle(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.IndexByte(reply, '\n'); i >= 0 {
		reply = reply[:i]
	}
	reply = strings.Trim(reply, " \t\"'`*")
	reply = strings.TrimPrefix(reply, "Title: ")
	return trickle.TitleFromText(reply)
}

// SynthesizeTitle generates a title from the first user message of convID
// with a non-streaming request and stores it.
func (s *Service) SynthesizeTitle(ctx context.Context, convID, model string) (string, error) {
	conv, err := s.store.Get(ctx, convID)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	var first string
	for _, m := range conv.Messages {
		if um, ok := m.(trickle.UserMessage); ok {
			first = um.Text()
			break
		}
	}
	title, err := GenerateTitle(ctx, s.ctrl, model, first)
	if err != nil {
		return "", err
	}
	if err := s.store.Rename(ctx, convID, title); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return title, nil
}
