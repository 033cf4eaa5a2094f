package trickle

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving events.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Provider.Stream().
//
// Next returns events in arrival order and io.EOF once the response body
// ends normally. Malformed records never surface here; they are dropped by
// the provider's decoder. A read failure is returned as a *TransportError,
// or as an error matching ErrCanceled when the context was cancelled.
//
// Close releases the underlying connection. It is safe to call more than
// once and after a terminal state.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}
