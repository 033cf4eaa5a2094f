package trickle

// Event is a sealed interface representing one decoded protocol event.
// Events arrive strictly in wire order. Transport failures come from
// Stream.Next's error return; in-band failures arrive as EventError.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventTextDelta carries a fragment of the visible answer.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventThinkingDelta carries a fragment of the reasoning trace.
type EventThinkingDelta struct {
	Delta string
}

func (EventThinkingDelta) event() {}

// EventMessageDelta carries message-level bookkeeping such as the stop
// reason. It never changes the accumulated text.
type EventMessageDelta struct {
	StopReason string
}

func (EventMessageDelta) event() {}

// EventError is an in-band error reported by the server mid-stream.
type EventError struct {
	Message string
}

func (EventError) event() {}

// EventDone marks the logical end of the message.
type EventDone struct{}

func (EventDone) event() {}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventThinkingDelta{}
	_ Event = EventMessageDelta{}
	_ Event = EventError{}
	_ Event = EventDone{}
)
