package chat

import "github.com/fwojciec/trickle"

// BuildRequest selects the history to send for conv. A persona
// conversation sends only its most recent message so earlier unrelated
// turns do not dilute the persona's instructions.
func BuildRequest(conv trickle.Conversation, model string, maxTokens int) trickle.Request {
	msgs := conv.Messages
	if conv.Persona != "" && len(msgs) > 1 {
		msgs = msgs[len(msgs)-1:]
	}
	return trickle.Request{
		Model:        model,
		SystemPrompt: conv.SystemPrompt,
		Messages:     append([]trickle.Message(nil), msgs...),
		MaxTokens:    maxTokens,
	}
}
