package anthropic_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/anthropic"
	"github.com/stretchr/testify/require"
)

// sseResponse is a helper to build SSE responses for tests.
type sseResponse struct {
	events []sseEvent
}

type sseEvent struct {
	event string
	data  string
}

func (s sseResponse) body() string {
	var b strings.Builder
	for _, evt := range s.events {
		if evt.event != "" {
			fmt.Fprintf(&b, "event: %s\n", evt.event)
		}
		fmt.Fprintf(&b, "data: %s\n\n", evt.data)
	}
	return b.String()
}

func (s sseResponse) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, evt := range s.events {
			if evt.event != "" {
				fmt.Fprintf(w, "event: %s\n", evt.event)
			}
			fmt.Fprintf(w, "data: %s\n\n", evt.data)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func textDelta(text string) sseEvent {
	return sseEvent{"content_block_delta", fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":%q}}`, text)}
}

func thinkingDelta(text string) sseEvent {
	return sseEvent{"content_block_delta", fmt.Sprintf(`{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":%q}}`, text)}
}

func errorEvent(msg string) sseEvent {
	return sseEvent{"error", fmt.Sprintf(`{"type":"error","error":{"type":"overloaded_error","message":%q}}`, msg)}
}

var doneEvent = sseEvent{"", "[DONE]"}

// textStreamResponse returns a full text streaming SSE response.
func textStreamResponse() sseResponse {
	return sseResponse{events: []sseEvent{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-5","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
		textDelta("Hello"),
		textDelta(" world"),
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}}
}

func userRequest(text string) trickle.Request {
	return trickle.Request{Messages: []trickle.Message{trickle.NewUserMessage(text)}}
}

func streamFromSSE(t *testing.T, resp sseResponse) trickle.Stream {
	t.Helper()
	srv := httptest.NewServer(resp.handler())
	t.Cleanup(srv.Close)
	client := anthropic.New("test-key", anthropic.WithBaseURL(srv.URL))
	stream, err := client.Stream(context.Background(), userRequest("Hi"))
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func collectEvents(t *testing.T, s trickle.Stream) []trickle.Event {
	t.Helper()
	var events []trickle.Event
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
	return events
}

// interpret folds every event of s and returns the interpreter.
func interpret(t *testing.T, s trickle.Stream) *trickle.Interpreter {
	t.Helper()
	var in trickle.Interpreter
	for _, evt := range collectEvents(t, s) {
		in.Apply(evt)
	}
	return &in
}
