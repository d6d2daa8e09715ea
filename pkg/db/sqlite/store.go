// Package sqlite stores notes in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// MaxCreateAttempts bounds how many suffixed ids Create tries on a collision
var MaxCreateAttempts = 5

type Store struct {
	db     *sql.DB
	path   string
	log    zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
	status v1.SyncStatus
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string, opts ...Option) (*Store, error) {
	expanded, err := homedir.Expand(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", expanded+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:     conn,
		path:   expanded,
		log:    zerolog.Nop(),
		now:    time.Now,
		status: v1.StatusUninitialized,
	}
	for _, o := range opts {
		o(s)
	}

	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	s.status = v1.StatusOK
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) setStatus(st v1.SyncStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func (s *Store) Status() v1.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) StoragePath() string {
	return s.path
}

// List returns all notes in descending id order.
func (s *Store) List(ctx context.Context) ([]v1.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content FROM notes ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []v1.Note
	for rows.Next() {
		var n v1.Note
		if err := rows.Scan(&n.ID, &n.Content); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *Store) Create(ctx context.Context) (v1.Note, error) {
	now := s.now()
	base := fmt.Sprintf("%s%d", v1.IDPrefix, now.UnixMilli())

	for attempt := 0; attempt < MaxCreateAttempts; attempt++ {
		id := base
		if attempt > 0 {
			id = fmt.Sprintf("%s_%d", base, attempt)
		}

		res, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO notes (id, content, created_at, updated_at) VALUES (?, '', ?, ?)`,
			id, now.UnixMilli(), now.UnixMilli())
		if err != nil {
			s.setStatus(v1.StatusError)
			return v1.Note{}, fmt.Errorf("insert note: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			s.log.Debug().Str("id", id).Msg("created note")
			return v1.Note{ID: v1.ID(id)}, nil
		}
	}

	return v1.Note{}, fmt.Errorf("unable to create note after %d tries", MaxCreateAttempts)
}

// Update replaces a note's content, creating the row if it does not exist.
func (s *Store) Update(ctx context.Context, id v1.ID, content string) error {
	s.setStatus(v1.StatusSynchronizing)
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notes (id, content, created_at, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		string(id), content, now, now)
	if err != nil {
		s.setStatus(v1.StatusError)
		return fmt.Errorf("update note %s: %w", id, err)
	}
	s.setStatus(v1.StatusOK)
	return nil
}

func (s *Store) Delete(ctx context.Context, id v1.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ db.DB = (*Store)(nil)
