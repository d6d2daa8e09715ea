package db

import (
	"context"

	"github.com/byxorna/stickies/pkg/types/v1"
)

// Type names a DB implementation in configuration
type Type string

const (
	TypeFS     Type = "fs"
	TypeSQLite Type = "sqlite"
	TypeMemory Type = "memory"
)

// DB is the interface any backend satisfies to provide storage for notes.
// It is what the host commands (list_notes, create_note, update_note,
// delete_note) run against.
type DB interface {
	// List returns every note, newest first
	List(ctx context.Context) ([]v1.Note, error)
	// Create allocates a fresh id and stores an empty note under it
	Create(ctx context.Context) (v1.Note, error)
	Update(ctx context.Context, id v1.ID, content string) error
	// Delete removes a note. Deleting a note that does not exist is not an error.
	Delete(ctx context.Context, id v1.ID) error

	StoragePath() string
	Status() v1.SyncStatus
	Close() error
}

// Event reports a note that changed underneath a DB, e.g. edited by another program
type Event struct {
	ID      v1.ID
	Removed bool
}

// Watcher is implemented by backends that can report outside changes
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
