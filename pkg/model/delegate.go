// https://github.com/charmbracelet/bubbletea/blob/master/examples/list-fancy/delegate.go
package model

import (
	"fmt"
	"io"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/text"
	"github.com/byxorna/stickies/pkg/ui"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// cardItem decorates a card for the sidebar list
type cardItem struct {
	*cards.Card
}

func (i cardItem) Title() string {
	title := text.EmojiNote + " " + i.Card.Title()
	n := i.Note()
	switch tasks := n.Tasks(); {
	case tasks.Done():
		title += divider + text.EmojiSaved
	case tasks.Total > 0:
		title += divider + tasks.String()
	}
	return title
}

func (i cardItem) Description() string {
	var when string
	if t := i.Touched(); !t.IsZero() {
		when = text.RelativeTime(t)
	} else if t, ok := i.Created(); ok {
		when = text.RelativeTime(t)
	}
	if when == "" {
		return i.Card.Description()
	}
	return fmt.Sprintf("%s %s %s", when, divider, i.Card.Description())
}

func itemsFromCards(cs []*cards.Card) []list.Item {
	lx := make([]list.Item, len(cs))
	for i := range cs {
		lx[i] = cardItem{cs[i]}
	}
	return lx
}

// cardDelegate is the default delegate with a colored bar in the accent
// color of each note.
type cardDelegate struct {
	list.DefaultDelegate
}

func newCardDelegate() cardDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(ui.Fuchsia).
		BorderForeground(ui.Fuchsia)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(ui.DullFuchsia).
		BorderForeground(ui.Fuchsia)
	return cardDelegate{DefaultDelegate: d}
}

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(cardItem)
	if !ok || index == m.Index() {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}
	accent := d.DefaultDelegate
	bar := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ci.Color()).
		Padding(0, 0, 0, 1)
	accent.Styles.NormalTitle = bar.Foreground(ui.Normal)
	accent.Styles.NormalDesc = bar.Foreground(ui.DimNormal)
	accent.Render(w, m, index, item)
}

// filterCards ranks list items against term the way cards.Registry.Filter
// does, folding diacritics on both sides. Match positions refer to the
// normalized text, not the title on screen, so none are reported.
func filterCards(term string, targets []string) []list.Rank {
	needle, err := text.Normalize(term)
	if err != nil {
		needle = term
	}
	matches := fuzzy.Find(needle, targets)
	ranks := make([]list.Rank, len(matches))
	for i, r := range matches {
		ranks[i] = list.Rank{Index: r.Index}
	}
	return ranks
}
