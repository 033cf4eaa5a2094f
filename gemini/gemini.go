// Package gemini implements [trickle.Provider] and [trickle.Completer] for
// the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between trickle's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [trickle.Stream] interface.
package gemini

const (
	defaultModel     = "gemini-2.5-pro"
	defaultMaxTokens = 16384
)
