package trickle

import "fmt"

// Persona is a conversation-scoped system prompt override. A conversation
// running under a persona sends only its most recent message upstream so
// unrelated earlier context does not dilute the persona.
type Persona struct {
	ID           string
	Name         string
	Description  string
	SystemPrompt string
}

// DefaultPersonas returns the built-in personas.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			ID:           "grammar",
			Name:         "Grammar Correction",
			Description:  "Perfect your grammar and spelling",
			SystemPrompt: "You are a grammar correction assistant. Correct the grammar and spelling of the user's input, making it sound more natural and professional. Only provide the corrected text without any preamble or explanation.",
		},
		{
			ID:           "polite-email",
			Name:         "Polite Email",
			Description:  "Make your emails professional and kind",
			SystemPrompt: "You are an assistant that rewrites emails to be more polite and professional. Maintain the original meaning but improve the tone to be respectful and professional. Provide the rewritten email.",
		},
		{
			ID:           "polite-message",
			Name:         "Polite Message",
			Description:  "Friendly and professional chat messages",
			SystemPrompt: "You are an assistant that rewrites short messages to be more polite and professional. Keep it concise and friendly while maintaining a professional tone.",
		},
		{
			ID:           "cs-email",
			Name:         "Customer Service Email",
			Description:  "Professional CS responses and translations",
			SystemPrompt: "You are a customer service specialist. Rewrite the user's request into a professional customer service email. If the input is in a different language, translate it to English while maintaining a professional CS tone.",
		},
	}
}

// FindPersona looks up a built-in persona by ID.
func FindPersona(id string) (Persona, error) {
	for _, p := range DefaultPersonas() {
		if p.ID == id {
			return p, nil
		}
	}
	return Persona{}, fmt.Errorf("unknown persona %q: %w", id, ErrValidation)
}
