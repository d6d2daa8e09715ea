// Package cards keeps the set of note cards shown to the user, one per note id,
// in the order the store reported them.
package cards

import (
	"errors"
	"fmt"
	"sync"

	"github.com/byxorna/stickies/pkg/text"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/sahilm/fuzzy"
)

var ErrDuplicateID = errors.New("card already exists")

type Registry struct {
	mu    sync.RWMutex
	order []*Card
	byID  map[v1.ID]*Card
}

func NewRegistry() *Registry {
	return &Registry{byID: map[v1.ID]*Card{}}
}

// Load replaces every card with one per note, keeping the given order. Later
// duplicates of an id are dropped and counted. Cards of pinned ids keep their
// cached content and identity, even when the notes no longer carry them.
func (r *Registry) Load(notes []v1.Note, pinned ...v1.ID) (dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keep := map[v1.ID]*Card{}
	for _, id := range pinned {
		if c, ok := r.byID[id]; ok {
			keep[id] = c
		}
	}

	order := make([]*Card, 0, len(notes))
	byID := make(map[v1.ID]*Card, len(notes))
	for _, n := range notes {
		if _, dup := byID[n.ID]; dup {
			dropped++
			continue
		}
		c, ok := keep[n.ID]
		if ok {
			delete(keep, n.ID)
		} else {
			c = newCard(n)
		}
		order = append(order, c)
		byID[n.ID] = c
	}
	// pinned cards missing from the store go back on top
	for _, id := range pinned {
		if c, ok := keep[id]; ok {
			order = append([]*Card{c}, order...)
			byID[id] = c
		}
	}

	r.order = order
	r.byID = byID
	return dropped
}

// Prepend adds a card for n in the first position.
func (r *Registry) Prepend(n v1.Note) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	c := newCard(n)
	r.order = append([]*Card{c}, r.order...)
	r.byID[n.ID] = c
	return c, nil
}

// Remove drops the card for id, reporting whether there was one.
func (r *Registry) Remove(id v1.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, c := range r.order {
		if c.id == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Get(id v1.ID) (*Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Cards returns the cards in display order. The slice is a copy.
func (r *Registry) Cards() []*Card {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Card, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Filter returns the cards fuzzy matching query, in display order rather than
// by match score. An empty query matches everything.
func (r *Registry) Filter(query string) []*Card {
	all := r.Cards()
	if query == "" {
		return all
	}
	needle, err := text.Normalize(query)
	if err != nil {
		needle = query
	}

	targets := make([]string, len(all))
	for i, c := range all {
		targets[i] = c.FilterValue()
	}

	matched := map[int]bool{}
	for _, m := range fuzzy.Find(needle, targets) {
		matched[m.Index] = true
	}

	filtered := []*Card{}
	for i, c := range all {
		if matched[i] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Sync brings a card's cache in line with a note changed outside this
// process. It reports whether a card was updated.
func (r *Registry) Sync(n v1.Note) bool {
	c, ok := r.Get(n.ID)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.content == n.Content {
		return false
	}
	c.set(n.Content, c.touched)
	if n.Path != "" {
		c.path = n.Path
	}
	return true
}
