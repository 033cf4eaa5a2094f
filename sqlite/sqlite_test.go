package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/trickle"
	"github.com/fwojciec/trickle/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "trickle.db")
	s, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func conversation(id, text string, created time.Time) trickle.Conversation {
	c := trickle.NewConversation(trickle.NewUserMessage(text), nil)
	c.ID = id
	c.CreatedAt = created
	c.UpdatedAt = created
	return c
}

func TestStore_CreateGetList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, conversation("a", "first", base)))
	require.NoError(t, s.Create(ctx, conversation("b", "second", base.Add(time.Minute))))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	require.Len(t, list[1].Messages, 1)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.True(t, base.Equal(got.CreatedAt))
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "first", got.Messages[0].(trickle.UserMessage).Text())
}

func TestStore_CreateDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)

	require.NoError(t, s.Create(ctx, conversation("a", "x", time.Now())))
	assert.ErrorIs(t, s.Create(ctx, conversation("a", "y", time.Now())), trickle.ErrValidation)
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, trickle.ErrNotFound)
	_, err = s.Messages(ctx, "missing")
	assert.ErrorIs(t, err, trickle.ErrNotFound)
	assert.ErrorIs(t, s.AppendMessage(ctx, "missing", trickle.AssistantMessage{}), trickle.ErrNotFound)
	assert.ErrorIs(t, s.TrimLastAssistant(ctx, "missing"), trickle.ErrNotFound)
	assert.ErrorIs(t, s.Rename(ctx, "missing", "t"), trickle.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), trickle.ErrNotFound)
}

func TestStore_AppendTrimRetryCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)
	require.NoError(t, s.Create(ctx, conversation("a", "q", time.Now())))

	require.NoError(t, s.AppendMessage(ctx, "a", trickle.AssistantMessage{IsError: true, Error: "API Error: 502 - bad gateway"}))
	require.NoError(t, s.TrimLastAssistant(ctx, "a"))
	require.NoError(t, s.AppendMessage(ctx, "a", trickle.AssistantMessage{Text: "answer", Thinking: "t", StopReason: trickle.StopEndTurn}))

	msgs, err := s.Messages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	am := msgs[1].(trickle.AssistantMessage)
	assert.Equal(t, "answer", am.Text)
	assert.Equal(t, "t", am.Thinking)
	assert.False(t, am.IsError)

	require.NoError(t, s.TrimLastAssistant(ctx, "a"))
	require.NoError(t, s.TrimLastAssistant(ctx, "a"))
	msgs, err = s.Messages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, trickle.RoleUser, msgs[0].Role())
}

func TestStore_TrimEmptyConversation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)
	p, err := trickle.FindPersona("cs-email")
	require.NoError(t, err)
	c := trickle.NewConversation(trickle.UserMessage{}, &p)
	require.NoError(t, s.Create(ctx, c))

	require.NoError(t, s.TrimLastAssistant(ctx, c.ID))
	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
	assert.Equal(t, "cs-email", got.Persona)
	assert.Equal(t, p.SystemPrompt, got.SystemPrompt)
}

func TestStore_RenameAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := openStore(t)
	require.NoError(t, s.Create(ctx, conversation("a", "q", time.Now())))

	require.NoError(t, s.Rename(ctx, "a", "Better title"))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Better title", got.Title)
	assert.ErrorIs(t, s.Rename(ctx, "a", ""), trickle.ErrValidation)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, trickle.ErrNotFound)
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, path := openStore(t)
	require.NoError(t, s.Create(ctx, conversation("a", "kept", time.Now())))
	require.NoError(t, s.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title)
}
