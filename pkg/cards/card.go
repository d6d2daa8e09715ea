package cards

import (
	"strings"
	"sync"
	"time"

	"github.com/byxorna/stickies/pkg/text"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/charmbracelet/lipgloss"
)

// Card is the on-screen representation of one note. It caches the last known
// content of the note and the title and preview derived from it.
type Card struct {
	mu sync.RWMutex

	id      v1.ID
	path    string
	content string
	title   string
	preview string
	touched time.Time
}

func newCard(n v1.Note) *Card {
	c := &Card{id: n.ID, path: n.Path}
	c.set(n.Content, time.Time{})
	return c
}

func (c *Card) set(content string, at time.Time) {
	c.content = content
	c.title = text.TitleFor(content)
	c.preview = text.PreviewFor(content)
	c.touched = at
}

func (c *Card) ID() v1.ID { return c.id }

func (c *Card) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

func (c *Card) Content() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.content
}

// SetContent replaces the cached content and re-derives title and preview.
func (c *Card) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(content, time.Now())
}

func (c *Card) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.title
}

func (c *Card) Preview() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preview
}

// Description is the preview folded onto one line, for list rows.
func (c *Card) Description() string {
	return strings.Join(strings.Fields(c.Preview()), " ")
}

func (c *Card) FilterValue() string {
	c.mu.RLock()
	hay := c.title + " " + c.content
	c.mu.RUnlock()
	normalized, err := text.Normalize(hay)
	if err != nil {
		return strings.ToLower(hay)
	}
	return normalized
}

// Touched is when the card content was last changed locally; zero when it
// only ever came from the store.
func (c *Card) Touched() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.touched
}

// Created is recovered from the note id when the store uses timestamped ids.
func (c *Card) Created() (time.Time, bool) {
	n := v1.Note{ID: c.id}
	return n.Created()
}

func (c *Card) Color() lipgloss.Color { return text.ColorFor(c.id.String()) }

// Note snapshots the card as a note record.
func (c *Card) Note() v1.Note {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return v1.Note{ID: c.id, Content: c.content, Path: c.path}
}
