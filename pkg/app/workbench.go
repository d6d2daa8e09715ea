// Package app ties the store client, the card registry and the editing
// session together. A Workbench owns exactly one session, so at most one note
// is ever open.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/config"
	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/session"
	"github.com/byxorna/stickies/pkg/store"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/rs/zerolog"
)

var ErrNoSuchCard = errors.New("no such card")

type Workbench struct {
	*config.Config

	client   *store.Client
	registry *cards.Registry
	session  *session.Controller
	log      zerolog.Logger

	// backend is set when the notes are served in-process
	backend  db.DB
	location string
	closers  []func() error
}

func (w *Workbench) Registry() *cards.Registry    { return w.registry }
func (w *Workbench) Session() *session.Controller { return w.session }
func (w *Workbench) Client() *store.Client        { return w.client }
func (w *Workbench) Location() string             { return w.location }

// SyncStatus reports how the notes backend is doing. A remote host counts as
// ok while it is reachable.
func (w *Workbench) SyncStatus() v1.SyncStatus {
	if !w.client.Available() {
		return v1.StatusOffline
	}
	if w.backend == nil {
		return v1.StatusOK
	}
	return w.backend.Status()
}

// Load fills the registry from the store, in store order.
func (w *Workbench) Load(ctx context.Context) error {
	notes, err := w.client.List(ctx)
	if err != nil {
		return err
	}
	if dropped := w.registry.Load(notes); dropped > 0 {
		w.log.Warn().Int("dropped", dropped).Msg("store listed duplicate note ids")
	}
	w.log.Debug().Int("notes", w.registry.Len()).Msg("loaded notes")
	return nil
}

// Reload re-lists the store after an outside change. The card of the open
// note keeps its cached draft.
func (w *Workbench) Reload(ctx context.Context) error {
	notes, err := w.client.List(ctx)
	if err != nil {
		return err
	}
	var pinned []v1.ID
	if snap := w.session.Snapshot(); snap.State == session.Open {
		pinned = append(pinned, snap.NoteID)
	}
	w.registry.Load(notes, pinned...)
	return nil
}

// Refresh folds one outside change into the cards. An edit to a known note
// only updates that card; anything else re-lists like Reload. The open note
// keeps its draft either way.
func (w *Workbench) Refresh(ctx context.Context, ev db.Event) error {
	if _, known := w.registry.Get(ev.ID); ev.Removed || !known {
		return w.Reload(ctx)
	}
	if snap := w.session.Snapshot(); snap.State == session.Open && snap.NoteID == ev.ID {
		w.log.Warn().Str("id", ev.ID.String()).Msg("open note changed outside, keeping the draft")
		return nil
	}

	notes, err := w.client.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if n.ID == ev.ID {
			w.registry.Sync(n)
			return nil
		}
	}
	// listed before the write landed, or gone since
	return w.Reload(ctx)
}

// NewNote creates a note, puts its card first and opens it. Nothing is added
// when the store does not hand back an id.
func (w *Workbench) NewNote(ctx context.Context) (*cards.Card, error) {
	n, err := w.client.Create(ctx)
	if err != nil {
		return nil, err
	}
	card, err := w.registry.Prepend(n)
	if errors.Is(err, cards.ErrDuplicateID) {
		// a reload picked the new note up before we got here
		existing, ok := w.registry.Get(n.ID)
		if !ok {
			return nil, fmt.Errorf("unable to add card for %s: %w", n.ID, err)
		}
		card, err = existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to add card for %s: %w", n.ID, err)
	}
	if err := w.session.Open(ctx, n, card); err != nil {
		return card, err
	}
	w.log.Info().Str("id", n.ID.String()).Msg("created note")
	return card, nil
}

// Open opens the note behind an existing card, using the card's cached
// content rather than asking the store again.
func (w *Workbench) Open(ctx context.Context, id v1.ID) error {
	card, ok := w.registry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchCard, id)
	}
	return w.session.Open(ctx, card.Note(), card)
}

// Watch forwards outside changes when the backend is local and can report them.
func (w *Workbench) Watch(ctx context.Context) (<-chan db.Event, bool) {
	watcher, ok := w.backend.(db.Watcher)
	if !ok {
		return nil, false
	}
	events, err := watcher.Watch(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("unable to watch notes for outside changes")
		return nil, false
	}
	return events, true
}

// Close saves and closes the open note, then releases the backend.
func (w *Workbench) Close(ctx context.Context) error {
	var errs []error
	if err := w.session.RequestClose(ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		errs = append(errs, err)
	}
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
