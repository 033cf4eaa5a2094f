// Package chat drives streaming exchanges with a model provider.
//
// A Controller owns the lifecycle of one streaming request at a time and
// folds decoded events into cumulative snapshots. A Service sits between a
// conversation store and a Controller: it builds the request from stored
// history, paces the answer for display, and appends the finished reply.
package chat

import "fmt"

// State is the lifecycle state of a streaming session.
type State int

const (
	StateIdle       State = iota // No session has started.
	StateRequesting              // Request sent, waiting for a success status.
	StateStreaming               // Consuming the response body.
	StateCompleted               // Body ended with no terminal error.
	StateCancelled               // Aborted by the caller.
	StateFailed                  // Transport failure or in-band error event.
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}
