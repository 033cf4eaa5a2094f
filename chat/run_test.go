package chat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/chat"
	"github.com/fwojciec/trickle/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Start(t *testing.T) {
	t.Parallel()

	t.Run("delivers latest snapshot", func(t *testing.T) {
		t.Parallel()
		var events []trickle.Event
		for _, w := range strings.Fields("the quick brown fox jumps over the lazy dog") {
			events = append(events, text(w+" "))
		}
		run := chat.New(streamProvider(eventStream(nil, events...))).Start(context.Background(), trickle.Request{})

		var got []trickle.Snapshot
		for s := range run.Updates() {
			got = append(got, s)
		}
		snap, err := run.Wait()
		require.NoError(t, err)
		assert.Equal(t, "the quick brown fox jumps over the lazy dog ", snap.Text)
		require.NotEmpty(t, got)
		assert.Equal(t, snap, got[len(got)-1])
		for i := 1; i < len(got); i++ {
			assert.True(t, strings.HasPrefix(got[i].Text, got[i-1].Text), "update %d shrank", i)
		}
	})

	t.Run("done closes", func(t *testing.T) {
		t.Parallel()
		run := chat.New(streamProvider(eventStream(nil))).Start(context.Background(), trickle.Request{})
		<-run.Done()
		_, ok := <-run.Updates()
		assert.False(t, ok)
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()
		ctrl := chat.New(&mock.Provider{
			StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
				return blockingStream(ctx, text("partial")), nil
			},
		})
		run := ctrl.Start(context.Background(), trickle.Request{})
		<-run.Updates()
		run.Cancel()
		snap, err := run.Wait()
		assert.True(t, trickle.IsCanceled(err))
		assert.Equal(t, trickle.Snapshot{}, snap)
		assert.Equal(t, chat.StateCancelled, ctrl.State())
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		run := chat.New(streamProvider(eventStream(nil, text("a"), trickle.EventError{Message: "bad"}))).
			Start(context.Background(), trickle.Request{})
		snap, err := run.Wait()
		assert.EqualError(t, err, "bad")
		assert.Equal(t, "a", snap.Text)
	})
}
