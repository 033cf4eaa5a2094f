package trickle

// Snapshot is the cumulative state of one streaming session. Within a
// session Text and Thinking only ever grow.
type Snapshot struct {
	Text     string
	Thinking string
}

// Interpreter folds events into a Snapshot. The zero value is ready to use.
//
// An EventError halts the interpreter: the terminal error is recorded and
// every later Apply is a no-op.
type Interpreter struct {
	snap       Snapshot
	stopReason StopReason
	err        *ProtocolError
	done       bool
}

// defaultErrorMessage is used when an error event carries no message.
const defaultErrorMessage = "Unknown error"

// Apply folds evt into the snapshot and reports whether the snapshot or the
// terminal error changed. Unknown events are ignored.
func (in *Interpreter) Apply(evt Event) bool {
	if in.err != nil {
		return false
	}
	switch e := evt.(type) {
	case EventTextDelta:
		if e.Delta == "" {
			return false
		}
		in.snap.Text += e.Delta
		return true
	case EventThinkingDelta:
		if e.Delta == "" {
			return false
		}
		in.snap.Thinking += e.Delta
		return true
	case EventMessageDelta:
		if e.StopReason != "" {
			in.stopReason = ParseStopReason(e.StopReason)
		}
		return false
	case EventError:
		msg := e.Message
		if msg == "" {
			msg = defaultErrorMessage
		}
		in.err = &ProtocolError{Message: msg}
		return true
	case EventDone:
		in.done = true
		return false
	}
	return false
}

// Snapshot returns the accumulated text and thinking.
func (in *Interpreter) Snapshot() Snapshot { return in.snap }

// StopReason returns the last stop reason seen, or empty if none arrived.
func (in *Interpreter) StopReason() StopReason { return in.stopReason }

// Err returns the terminal protocol error, or nil.
func (in *Interpreter) Err() error {
	if in.err == nil {
		return nil
	}
	return in.err
}

// Halted reports whether an error event stopped interpretation.
func (in *Interpreter) Halted() bool { return in.err != nil }

// Done reports whether an end-of-message event was seen.
func (in *Interpreter) Done() bool { return in.done }
