package trickle

// Model describes a model offered by the proxy.
type Model struct {
	ID   string
	Name string
}

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-thinking"

// AvailableModels returns the models the proxy is known to serve.
func AvailableModels() []Model {
	return []Model{
		{ID: "claude-sonnet-4-5-thinking", Name: "Claude Sonnet 4.5 (Thinking)"},
		{ID: "claude-opus-4-6-thinking", Name: "Claude Opus 4.6 (Thinking)"},
		{ID: "claude-sonnet-4-6", Name: "Claude Sonnet 4.6 (Thinking)"},
		{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5"},
		{ID: "gemini-3-flash", Name: "Gemini 3 Flash"},
		{ID: "gemini-3-pro-high", Name: "Gemini 3 Pro (High)"},
		{ID: "gemini-3-pro-low", Name: "Gemini 3 Pro (Low)"},
		{ID: "gemini-3-pro-image", Name: "Gemini 3 Pro Image"},
		{ID: "gemini-2.5-flash-thinking", Name: "Gemini 2.5 Flash (Thinking)"},
		{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
		{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash"},
		{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite"},
	}
}
