package bubbletea_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/trickle"
	bt "github.com/fwojciec/trickle/bubbletea"
	"github.com/fwojciec/trickle/chat"
	trickjson "github.com/fwojciec/trickle/json"
	"github.com/fwojciec/trickle/mock"
	"github.com/stretchr/testify/require"
)

// replyProvider streams events for every request.
func replyProvider(events ...trickle.Event) *mock.Provider {
	return &mock.Provider{
		StreamFn: func(ctx context.Context, req trickle.Request) (trickle.Stream, error) {
			i := 0
			return &mock.Stream{
				NextFn: func() (trickle.Event, error) {
					if i < len(events) {
						i++
						return events[i-1], nil
					}
					return nil, io.EOF
				},
			}, nil
		},
	}
}

func newStore(t *testing.T) *trickjson.Store {
	t.Helper()
	s, err := trickjson.Open(filepath.Join(t.TempDir(), "conversations.json"))
	require.NoError(t, err)
	return s
}

func newModel(t *testing.T, store trickle.ConversationStore, provider trickle.Provider, conv trickle.Conversation) bt.Model {
	t.Helper()
	svc := chat.NewService(chat.New(provider), store)
	return bt.New(svc, store, conv, bt.Options{
		Model:    "m",
		Theme:    trickle.DefaultTheme(),
		Interval: time.Millisecond,
	})
}

// initModel creates a model over an empty store and sends a WindowSizeMsg
// to initialize the viewport.
func initModel(t *testing.T) bt.Model {
	t.Helper()
	return sized(t, newModel(t, newStore(t), replyProvider(), trickle.Conversation{}), 80, 24)
}

func sized(t *testing.T, m bt.Model, width, height int) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// storedConversation creates conv in store and returns it.
func storedConversation(t *testing.T, store trickle.ConversationStore, msgs ...trickle.Message) trickle.Conversation {
	t.Helper()
	conv := trickle.NewConversation(trickle.UserMessage{}, nil)
	conv.Messages = msgs
	require.NoError(t, store.Create(context.Background(), conv))
	return conv
}
