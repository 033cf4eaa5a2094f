package mock

import "github.com/fwojciec/trickle"

// Interface compliance check.
var _ trickle.Stream = (*Stream)(nil)

// Stream is a test double for trickle.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe (no-op and zero value) because test code commonly calls
// defer stream.Close() and these methods rarely need custom behavior.
type Stream struct {
	NextFn  func() (trickle.Event, error)
	StateFn func() trickle.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (trickle.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() trickle.StreamState {
	if s.StateFn == nil {
		return trickle.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
