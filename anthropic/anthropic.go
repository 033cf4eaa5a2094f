// Package anthropic implements [trickle.Provider] and [trickle.Completer]
// for an Anthropic-shaped Messages endpoint served by a local proxy.
//
// The response body is a sequence of newline-delimited records. Records
// carrying the "data:" envelope hold a JSON payload; everything else is
// ignored. The decoder tolerates arbitrary chunk boundaries and drops
// malformed payloads without aborting the stream.
package anthropic

import "github.com/fwojciec/trickle"

const (
	defaultBaseURL   = "http://localhost:8080"
	defaultModel     = trickle.DefaultModel
	defaultMaxTokens = 16384
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"

	// doneSentinel is the payload that marks the logical end of a stream.
	doneSentinel = "[DONE]"
	dataPrefix   = "data:"
)

// apiRequest is the JSON body sent to the Messages endpoint.
type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Stream    bool         `json:"stream,omitempty"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

// apiMessage carries either a plain string or a slice of apiContentBlock
// in Content, matching what the endpoint accepts.
type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type apiContentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *apiImageSource `json:"source,omitempty"`
}

type apiImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// apiResponse is the non-streaming response body.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// ssePayload is the union of the payload shapes the decoder understands.
// Fields irrelevant to a given Type are left zero.
type ssePayload struct {
	Type  string       `json:"type"`
	Delta sseDelta     `json:"delta"`
	Error *sseErrorMsg `json:"error,omitempty"`
}

type sseDelta struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	Thinking   string `json:"thinking"`
	StopReason string `json:"stop_reason"`
}

type sseErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
