package model

import (
	"fmt"
	"strings"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/text"
	"github.com/cespare/xxhash/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// previewKey identifies a rendering of a card at a width, so unchanged cards
// are not rendered again.
func previewKey(c *cards.Card, width int) string {
	return fmt.Sprintf("%s/%d/%x", c.ID(), width, xxhash.Sum64String(c.Content()))
}

func renderPreviewCmd(c *cards.Card, width int) tea.Cmd {
	key := previewKey(c, width)
	content := c.Content()
	return func() tea.Msg {
		if strings.TrimSpace(content) == "" {
			return previewRenderedMsg{key: key, content: emptyPreviewStyle.Render(text.EmptyPreview)}
		}
		s, err := glamourRender(content, width)
		if err != nil {
			// fall back to the raw text
			return previewRenderedMsg{key: key, content: previewStyle.Render(content)}
		}
		return previewRenderedMsg{key: key, content: s}
	}
}

func glamourRender(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(0, width-4)),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", err
	}

	// trim lines
	lines := strings.Split(out, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n"), nil
}
