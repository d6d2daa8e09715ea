// Package session runs the one note editing session: which note is open, its
// draft text, and when that draft is written back to the store.
//
// Every exit from an open session writes the draft first, unless it matches
// what was last saved. While the note stays open, edits are saved once typing
// pauses for the autosave delay.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/debounce"
	"github.com/byxorna/stickies/pkg/store"
	"github.com/byxorna/stickies/pkg/text"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/rs/zerolog"
)

// DefaultAutosaveDelay is how long typing must pause before the draft is saved
const DefaultAutosaveDelay = 400 * time.Millisecond

// Store is the part of the store client a session writes through.
type Store interface {
	Update(ctx context.Context, id v1.ID, content string) error
	Delete(ctx context.Context, id v1.ID) error
}

type Option func(*Controller)

// WithAutosaveDelay sets the pause after the last edit before saving. Zero
// saves on every edit; negative values keep the default.
func WithAutosaveDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l.With().Str("component", "session").Logger() }
}

// WithContext sets the context autosaves run under.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

type inflightKey struct {
	id      v1.ID
	content string
}

// Controller owns the editing session. All methods are safe to call from any
// goroutine; autosaves run on the debounce timer's goroutine.
type Controller struct {
	mu sync.Mutex

	store    Store
	registry *cards.Registry
	log      zerolog.Logger
	ctx      context.Context
	delay    time.Duration
	saver    *debounce.Debouncer

	state     State
	id        v1.ID
	card      *cards.Card
	text      string
	lastSaved string
	status    Status
	escape    bool
	deleting  bool
	inflight  map[inflightKey]int
	observers []func(Snapshot)
}

func New(s Store, registry *cards.Registry, opts ...Option) *Controller {
	c := &Controller{
		store:    s,
		registry: registry,
		log:      zerolog.Nop(),
		ctx:      context.Background(),
		delay:    DefaultAutosaveDelay,
		inflight: map[inflightKey]int{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnChange registers fn to receive a snapshot after every change of state,
// title or status. fn is called without any session lock held.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:  c.state,
		NoteID: c.id,
		Status: c.status,
		Dirty:  c.state == Open && c.text != c.lastSaved,
	}
	if c.state == Open {
		s.Title = text.TitleFor(c.text)
	}
	return s
}

// emit hands a snapshot taken under the lock to observers, after unlocking.
func (c *Controller) emit(s Snapshot, observers []func(Snapshot)) {
	for _, fn := range observers {
		fn(s)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the draft of the open note
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// EscapeBound reports whether Escape currently closes the editor. It is bound
// exactly while a note is open.
func (c *Controller) EscapeBound() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.escape
}

// Open starts editing note through card. A note that is already open is
// saved and closed first.
func (c *Controller) Open(ctx context.Context, note v1.Note, card *cards.Card) error {
	if c.State() == Open {
		if err := c.RequestClose(ctx); err != nil {
			c.log.Warn().Err(err).Msg("previous note closed without saving")
		}
	}

	c.mu.Lock()
	if c.saver == nil {
		c.saver = debounce.New(c.delay, c.autosave)
	}
	c.state = Open
	c.id = note.ID
	c.card = card
	c.text = note.Content
	c.lastSaved = note.Content
	c.status = StatusNone
	c.escape = true
	c.deleting = false
	snap, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	c.log.Debug().Str("id", note.ID.String()).Msg("opened note")
	c.emit(snap, obs)
	return nil
}

// Edit records the new draft. The title and the bound card follow it
// immediately; the store sees it when typing pauses.
func (c *Controller) Edit(draft string) {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return
	}
	c.text = draft
	if c.card != nil {
		c.card.SetContent(draft)
	}
	c.saver.Trigger()
	snap, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	c.emit(snap, obs)
}

func (c *Controller) autosave() {
	if err := c.save(c.ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		c.log.Debug().Err(err).Msg("autosave failed")
	}
}

// save writes the draft of the open note unless it is already saved or an
// identical write is in flight.
func (c *Controller) save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Open || c.deleting {
		c.mu.Unlock()
		return nil
	}
	key := inflightKey{id: c.id, content: c.text}
	if key.content == c.lastSaved || c.inflight[key] > 0 {
		c.mu.Unlock()
		return nil
	}
	c.inflight[key]++
	previous := c.status
	c.status = StatusSaving
	snap, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()
	c.emit(snap, obs)

	err := c.store.Update(ctx, key.id, key.content)

	c.mu.Lock()
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
	switch {
	case err == nil:
		if c.state == Open && c.id == key.id {
			c.lastSaved = key.content
		}
		c.status = StatusSaved
	case errors.Is(err, store.ErrUnavailable):
		c.status = previous
	default:
		c.status = StatusSaveFailed
	}
	snap, obs = c.snapshotLocked(), c.observers
	c.mu.Unlock()
	c.emit(snap, obs)

	if err != nil {
		return fmt.Errorf("save %s: %w", key.id, err)
	}
	return nil
}

// RequestClose saves the draft and closes the editor. The editor closes even
// when the save fails; the error is returned and shown as the status.
func (c *Controller) RequestClose(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return nil
	}
	c.saver.Cancel()
	c.mu.Unlock()

	err := c.save(ctx)

	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return err
	}
	id := c.id
	if c.card != nil && c.card.Content() != c.text {
		c.card.SetContent(c.text)
	}
	c.closeLocked()
	snap, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	c.log.Debug().Str("id", id.String()).Err(err).Msg("closed note")
	c.emit(snap, obs)
	return err
}

func (c *Controller) closeLocked() {
	c.state = Closed
	c.id = ""
	c.card = nil
	c.text = ""
	c.lastSaved = ""
	c.escape = false
	c.deleting = false
}

// Blur saves the draft now and keeps the note open.
func (c *Controller) Blur(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return nil
	}
	c.saver.Cancel()
	c.mu.Unlock()
	return c.save(ctx)
}

// Delete removes the open note from the store and its card from the registry,
// closing the editor without saving. On failure the note stays open.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Open || c.deleting {
		c.mu.Unlock()
		return nil
	}
	id := c.id
	c.deleting = true
	c.saver.Cancel()
	c.mu.Unlock()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	if err != nil {
		c.deleting = false
		if !errors.Is(err, store.ErrUnavailable) {
			c.status = StatusDeleteFailed
		}
		// the draft may have been mid-debounce
		if c.state == Open && c.text != c.lastSaved {
			c.saver.Trigger()
		}
		snap, obs := c.snapshotLocked(), c.observers
		c.mu.Unlock()
		c.emit(snap, obs)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if c.registry != nil {
		c.registry.Remove(id)
	}
	c.closeLocked()
	snap, obs := c.snapshotLocked(), c.observers
	c.mu.Unlock()

	c.log.Info().Str("id", id.String()).Msg("deleted note")
	c.emit(snap, obs)
	return nil
}

// HandleEvent applies ev to the session. Events that mean nothing in the
// current state are ignored.
func (c *Controller) HandleEvent(ctx context.Context, ev Event) error {
	action, ok := transitions[c.State()][ev]
	if !ok {
		return nil
	}
	return action(c, ctx)
}
