package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/chat"
	"github.com/fwojciec/trickle/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Send(t *testing.T) {
	t.Parallel()

	t.Run("completed text only", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil,
			text("Hello"),
			text(" world"),
			trickle.EventMessageDelta{StopReason: "end_turn"},
			trickle.EventDone{},
		)))
		var updates []trickle.Snapshot
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, func(s trickle.Snapshot) {
			updates = append(updates, s)
		})
		require.NoError(t, err)
		assert.Equal(t, trickle.Snapshot{Text: "Hello world"}, snap)
		assert.Equal(t, []trickle.Snapshot{{Text: "Hello"}, {Text: "Hello world"}}, updates)
		assert.Equal(t, chat.StateCompleted, ctrl.State())
		assert.Equal(t, trickle.StopEndTurn, ctrl.StopReason())
	})

	t.Run("completed with thinking", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil,
			thinking("Let me "),
			thinking("think."),
			text("42"),
		)))
		var updates []trickle.Snapshot
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, func(s trickle.Snapshot) {
			updates = append(updates, s)
		})
		require.NoError(t, err)
		assert.Equal(t, trickle.Snapshot{Text: "42", Thinking: "Let me think."}, snap)
		assert.Equal(t, []trickle.Snapshot{
			{Thinking: "Let me "},
			{Thinking: "Let me think."},
			{Text: "42", Thinking: "Let me think."},
		}, updates)
	})

	t.Run("nil onUpdate", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil, text("ok"))))
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", snap.Text)
	})

	t.Run("error event keeps partial text", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil,
			text("Hi"),
			trickle.EventError{Message: "overloaded"},
			text("never applied"),
		)))
		var updates []trickle.Snapshot
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, func(s trickle.Snapshot) {
			updates = append(updates, s)
		})
		var perr *trickle.ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "overloaded", perr.Message)
		assert.Equal(t, trickle.Snapshot{Text: "Hi"}, snap)
		assert.Equal(t, []trickle.Snapshot{{Text: "Hi"}}, updates)
		assert.Equal(t, chat.StateFailed, ctrl.State())
		assert.Equal(t, trickle.StopError, ctrl.StopReason())
	})

	t.Run("error event without message", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil, trickle.EventError{})))
		_, err := ctrl.Send(context.Background(), trickle.Request{}, nil)
		assert.EqualError(t, err, "Unknown error")
	})

	t.Run("transport error mid-stream", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(
			&trickle.TransportError{Err: errors.New("connection reset")},
			text("part"),
		)))
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, nil)
		var terr *trickle.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "part", snap.Text)
		assert.Equal(t, chat.StateFailed, ctrl.State())
	})

	t.Run("request rejected", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				return nil, &trickle.TransportError{StatusCode: 500, Body: "boom"}
			},
		})
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, func(trickle.Snapshot) {
			t.Error("onUpdate called for a rejected request")
		})
		assert.EqualError(t, err, "API Error: 500 - boom")
		assert.Equal(t, trickle.Snapshot{}, snap)
		assert.Equal(t, chat.StateFailed, ctrl.State())
	})

	t.Run("states progress", func(t *testing.T) {
		t.Parallel()
		var ctrl *chat.Controller
		var seen []chat.State
		stream := eventStream(nil, text("a"))
		next := stream.NextFn
		stream.NextFn = func() (trickle.Event, error) {
			seen = append(seen, ctrl.State())
			return next()
		}
		ctrl = chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				seen = append(seen, ctrl.State())
				return stream, nil
			},
		})
		assert.Equal(t, chat.StateIdle, ctrl.State())
		_, err := ctrl.Send(context.Background(), trickle.Request{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []chat.State{chat.StateRequesting, chat.StateStreaming, chat.StateStreaming}, seen)
		assert.Equal(t, chat.StateCompleted, ctrl.State())
	})

	t.Run("closes stream", func(t *testing.T) {
		t.Parallel()
		closed := false
		stream := eventStream(nil, text("a"))
		stream.CloseFn = func() error {
			closed = true
			return nil
		}
		_, err := chat.New(streamProvider(stream)).Send(context.Background(), trickle.Request{}, nil)
		require.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("passes request", func(t *testing.T) {
		t.Parallel()
		var got trickle.Request
		ctrl := chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				got = req
				return eventStream(nil), nil
			},
		})
		req := trickle.Request{Model: "m", Messages: []trickle.Message{trickle.NewUserMessage("hi")}}
		_, err := ctrl.Send(context.Background(), req, nil)
		require.NoError(t, err)
		assert.Equal(t, req, got)
	})
}

func TestController_Cancel(t *testing.T) {
	t.Parallel()

	t.Run("mid-stream returns empty snapshot", func(t *testing.T) {
		t.Parallel()
		var ctrl *chat.Controller
		ctrl = chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				return blockingStream(ctx, text("Once upon")), nil
			},
		})
		var cancelled bool
		snap, err := ctrl.Send(context.Background(), trickle.Request{}, func(trickle.Snapshot) {
			cancelled = ctrl.Cancel()
		})
		assert.True(t, cancelled)
		assert.True(t, trickle.IsCanceled(err))
		assert.ErrorIs(t, err, trickle.ErrCanceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, trickle.Snapshot{}, snap)
		assert.Equal(t, chat.StateCancelled, ctrl.State())
		assert.Equal(t, trickle.StopAborted, ctrl.StopReason())
	})

	t.Run("parent context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		ctrl := chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				return blockingStream(ctx, text("x")), nil
			},
		})
		_, err := ctrl.Send(ctx, trickle.Request{}, func(trickle.Snapshot) { cancel() })
		assert.True(t, trickle.IsCanceled(err))
		assert.Equal(t, chat.StateCancelled, ctrl.State())
	})

	t.Run("provider sees cancellation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ctrl := chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				return nil, ctx.Err()
			},
		})
		_, err := ctrl.Send(ctx, trickle.Request{}, nil)
		assert.ErrorIs(t, err, trickle.ErrCanceled)
		assert.Equal(t, chat.StateCancelled, ctrl.State())
	})

	t.Run("idle", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil)))
		assert.False(t, ctrl.Cancel())
	})

	t.Run("after completion", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(streamProvider(eventStream(nil, text("done"))))
		_, err := ctrl.Send(context.Background(), trickle.Request{}, nil)
		require.NoError(t, err)
		assert.False(t, ctrl.Cancel())
	})
}

func TestController_Complete(t *testing.T) {
	t.Parallel()

	t.Run("delegates", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(nil, chat.WithCompleter(&mock.Completer{
			CompleteFn: func(ctx context.Context, req trickle.Request) (string, error) {
				return "final text", nil
			},
		}))
		got, err := ctrl.Complete(context.Background(), trickle.Request{})
		require.NoError(t, err)
		assert.Equal(t, "final text", got)
	})

	t.Run("no completer", func(t *testing.T) {
		t.Parallel()
		_, err := chat.New(nil).Complete(context.Background(), trickle.Request{})
		assert.ErrorIs(t, err, trickle.ErrNoCompleter)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ctrl := chat.New(nil, chat.WithCompleter(&mock.Completer{
			CompleteFn: func(ctx context.Context, req trickle.Request) (string, error) {
				return "", errors.New("request aborted")
			},
		}))
		_, err := ctrl.Complete(ctx, trickle.Request{})
		assert.True(t, trickle.IsCanceled(err))
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(nil, chat.WithCompleter(&mock.Completer{
			CompleteFn: func(ctx context.Context, req trickle.Request) (string, error) {
				return "", &trickle.TransportError{StatusCode: 502, Body: "bad gateway"}
			},
		}))
		_, err := ctrl.Complete(context.Background(), trickle.Request{})
		var terr *trickle.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, 502, terr.StatusCode)
	})
}
