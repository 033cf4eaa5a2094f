package trickle

// Request carries model selection and the conversation to send.
// The provider uses its own defaults when fields are zero.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	MaxTokens    int // 0 = provider default
}
