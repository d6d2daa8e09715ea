// Package memory is a DB that keeps notes in process memory only. It backs
// ephemeral sessions and the tests of the packages above the host boundary.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
)

type Store struct {
	*sync.Mutex

	entries map[v1.ID]v1.Note
	nextID  func() v1.ID
	seq     int
}

func New() *Store {
	s := &Store{
		Mutex:   &sync.Mutex{},
		entries: map[v1.ID]v1.Note{},
	}
	s.nextID = func() v1.ID {
		s.seq++
		return v1.ID(fmt.Sprintf("n%d", s.seq))
	}
	return s
}

// WithIDs makes Create hand out ids in the given order before falling back
// to the n<seq> scheme.
func (x *Store) WithIDs(ids ...v1.ID) *Store {
	x.Lock()
	defer x.Unlock()
	fallback := x.nextID
	x.nextID = func() v1.ID {
		if len(ids) == 0 {
			return fallback()
		}
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return x
}

// Seed stores notes as if they had been created earlier.
func (x *Store) Seed(notes ...v1.Note) *Store {
	x.Lock()
	defer x.Unlock()
	for _, n := range notes {
		x.entries[n.ID] = n
	}
	return x
}

// Get returns the stored note, for assertions.
func (x *Store) Get(id v1.ID) (v1.Note, bool) {
	x.Lock()
	defer x.Unlock()
	n, ok := x.entries[id]
	return n, ok
}

func (x *Store) List(ctx context.Context) ([]v1.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x.Lock()
	defer x.Unlock()

	sorted := make([]v1.Note, 0, len(x.entries))
	for _, n := range x.entries {
		sorted = append(sorted, n)
	}
	sort.Sort(sort.Reverse(v1.ByID(sorted)))
	return sorted, nil
}

func (x *Store) Create(ctx context.Context) (v1.Note, error) {
	if err := ctx.Err(); err != nil {
		return v1.Note{}, err
	}
	x.Lock()
	defer x.Unlock()

	id := x.nextID()
	if _, exists := x.entries[id]; exists {
		return v1.Note{}, fmt.Errorf("note %s already exists", id)
	}
	n := v1.Note{ID: id}
	x.entries[id] = n
	return n, nil
}

func (x *Store) Update(ctx context.Context, id v1.ID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.Lock()
	defer x.Unlock()
	x.entries[id] = v1.Note{ID: id, Content: content}
	return nil
}

func (x *Store) Delete(ctx context.Context, id v1.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.Lock()
	defer x.Unlock()
	delete(x.entries, id)
	return nil
}

func (x *Store) StoragePath() string   { return ":memory:" }
func (x *Store) Status() v1.SyncStatus { return v1.StatusOK }
func (x *Store) Close() error          { return nil }

var _ db.DB = (*Store)(nil)
