package trickle_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreter_TextDeltas(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter

	assert.True(t, in.Apply(trickle.EventTextDelta{Delta: "Hel"}))
	assert.True(t, in.Apply(trickle.EventTextDelta{Delta: "lo"}))

	assert.Equal(t, trickle.Snapshot{Text: "Hello"}, in.Snapshot())
	assert.NoError(t, in.Err())
}

func TestInterpreter_ThinkingThenText(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter

	in.Apply(trickle.EventThinkingDelta{Delta: "Let me think"})
	in.Apply(trickle.EventTextDelta{Delta: "42"})

	assert.Equal(t, trickle.Snapshot{Text: "42", Thinking: "Let me think"}, in.Snapshot())
}

func TestInterpreter_EmptyDeltaIsNotAChange(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter

	assert.False(t, in.Apply(trickle.EventTextDelta{}))
	assert.False(t, in.Apply(trickle.EventThinkingDelta{}))
}

func TestInterpreter_MessageDeltaRecordsStopReasonOnly(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter
	in.Apply(trickle.EventTextDelta{Delta: "a"})

	assert.False(t, in.Apply(trickle.EventMessageDelta{StopReason: "max_tokens"}))
	assert.Equal(t, trickle.Snapshot{Text: "a"}, in.Snapshot())
	assert.Equal(t, trickle.StopLength, in.StopReason())
}

func TestInterpreter_ErrorHalts(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter
	in.Apply(trickle.EventTextDelta{Delta: "partial"})

	assert.True(t, in.Apply(trickle.EventError{Message: "RESOURCE_EXHAUSTED"}))
	assert.True(t, in.Halted())

	// Later events are not applied.
	assert.False(t, in.Apply(trickle.EventTextDelta{Delta: " more"}))
	assert.Equal(t, trickle.Snapshot{Text: "partial"}, in.Snapshot())

	var perr *trickle.ProtocolError
	require.True(t, errors.As(in.Err(), &perr))
	assert.Equal(t, "RESOURCE_EXHAUSTED", perr.Message)
}

func TestInterpreter_ErrorWithoutMessage(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter
	in.Apply(trickle.EventError{})
	require.Error(t, in.Err())
	assert.Equal(t, "Unknown error", in.Err().Error())
}

func TestInterpreter_Done(t *testing.T) {
	t.Parallel()
	var in trickle.Interpreter
	assert.False(t, in.Apply(trickle.EventDone{}))
	assert.True(t, in.Done())
	assert.False(t, in.Halted())
}
