// Package sqlite implements [trickle.ConversationStore] on SQLite using the
// pure Go modernc.org/sqlite driver. Message bodies are stored in the same
// JSON encoding as the json package.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/trickle"
	trickjson "github.com/fwojciec/trickle/json"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	persona       TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	conversation_id TEXT NOT NULL,
	seq             INTEGER NOT NULL,
	body            TEXT NOT NULL,
	PRIMARY KEY (conversation_id, seq)
);`

// Interface compliance check.
var _ trickle.ConversationStore = (*Store)(nil)

// Store is a SQLite-backed conversation store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: create directories: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: init: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns all conversations with their messages, most recently
// created first.
func (s *Store) List(ctx context.Context) ([]trickle.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, persona, system_prompt, created_at, updated_at
		 FROM conversations ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	var convs []trickle.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	rows.Close()

	for i := range convs {
		msgs, err := s.messages(ctx, s.db, convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].Messages = msgs
	}
	return convs, nil
}

// Get returns the conversation with its messages.
func (s *Store) Get(ctx context.Context, id string) (trickle.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, persona, system_prompt, created_at, updated_at
		 FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return trickle.Conversation{}, notFound(id)
	}
	if err != nil {
		return trickle.Conversation{}, err
	}
	c.Messages, err = s.messages(ctx, s.db, id)
	if err != nil {
		return trickle.Conversation{}, err
	}
	return c, nil
}

// Create stores a new conversation and its initial messages.
func (s *Store) Create(ctx context.Context, c trickle.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("sqlite: conversation has no ID: %w", trickle.ErrValidation)
	}
	return s.tx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations WHERE id = ?`, c.ID).Scan(&n); err != nil {
			return fmt.Errorf("sqlite: create: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("sqlite: conversation %s already exists: %w", c.ID, trickle.ErrValidation)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, title, persona, system_prompt, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.Persona, c.SystemPrompt, c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("sqlite: create: %w", err)
		}
		for i, msg := range c.Messages {
			if err := insertMessage(ctx, tx, c.ID, i+1, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// Messages returns the messages of a conversation in order.
func (s *Store) Messages(ctx context.Context, id string) ([]trickle.Message, error) {
	if err := s.exists(ctx, s.db, id); err != nil {
		return nil, err
	}
	return s.messages(ctx, s.db, id)
}

// AppendMessage appends msg and bumps updated_at.
func (s *Store) AppendMessage(ctx context.Context, id string, msg trickle.Message) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if err := s.exists(ctx, tx, id); err != nil {
			return err
		}
		var seq int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM messages WHERE conversation_id = ?`, id).Scan(&seq); err != nil {
			return fmt.Errorf("sqlite: append: %w", err)
		}
		if err := insertMessage(ctx, tx, id, seq+1, msg); err != nil {
			return err
		}
		return touch(ctx, tx, id)
	})
}

// TrimLastAssistant removes the final message if it is an assistant reply.
func (s *Store) TrimLastAssistant(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if err := s.exists(ctx, tx, id); err != nil {
			return err
		}
		var (
			seq  int
			body string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT seq, body FROM messages WHERE conversation_id = ? ORDER BY seq DESC LIMIT 1`, id).Scan(&seq, &body)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sqlite: trim: %w", err)
		}
		msg, err := trickjson.UnmarshalMessage([]byte(body))
		if err != nil {
			return fmt.Errorf("sqlite: trim: %w", err)
		}
		if msg.Role() != trickle.RoleAssistant {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE conversation_id = ? AND seq = ?`, id, seq); err != nil {
			return fmt.Errorf("sqlite: trim: %w", err)
		}
		return touch(ctx, tx, id)
	})
}

// Rename sets the conversation title.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("sqlite: empty title: %w", trickle.ErrValidation)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE conversations SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("sqlite: rename: %w", err)
	}
	return affected(res, id)
}

// Delete removes a conversation and its messages.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: delete: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: delete: %w", err)
		}
		return affected(res, id)
	})
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, q querier, id string) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations WHERE id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *Store) messages(ctx context.Context, q querier, id string) ([]trickle.Message, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT body FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: messages: %w", err)
	}
	defer rows.Close()
	var msgs []trickle.Message
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("sqlite: messages: %w", err)
		}
		msg, err := trickjson.UnmarshalMessage([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("sqlite: conversation %s: %w", id, err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: messages: %w", err)
	}
	return msgs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(sc scanner) (trickle.Conversation, error) {
	var (
		c                trickle.Conversation
		created, updated int64
	)
	err := sc.Scan(&c.ID, &c.Title, &c.Persona, &c.SystemPrompt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return trickle.Conversation{}, err
	}
	if err != nil {
		return trickle.Conversation{}, fmt.Errorf("sqlite: scan conversation: %w", err)
	}
	c.CreatedAt = time.Unix(0, created)
	c.UpdatedAt = time.Unix(0, updated)
	return c, nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, id string, seq int, msg trickle.Message) error {
	body, err := trickjson.MarshalMessage(msg)
	if err != nil {
		return fmt.Errorf("sqlite: encode message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, seq, body) VALUES (?, ?, ?)`, id, seq, string(body)); err != nil {
		return fmt.Errorf("sqlite: insert message: %w", err)
	}
	return nil
}

func touch(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, time.Now().UnixNano(), id); err != nil {
		return fmt.Errorf("sqlite: touch: %w", err)
	}
	return nil
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("sqlite: conversation %s: %w", id, trickle.ErrNotFound)
}
