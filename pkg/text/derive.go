package text

import (
	"regexp"
	"strings"
)

const (
	// Untitled is shown for notes whose first line carries no text
	Untitled = "Untitled"
	// EmptyPreview is shown for notes with no content at all
	EmptyPreview = "Click to edit…"

	MaxTitleLength   = 80
	MaxPreviewLength = 240
	PreviewLines     = 6
)

var headingMarker = regexp.MustCompile(`^#{1,6}\s+`)

// TitleFor derives the display title of a note from its first line, without
// any leading markdown heading marker.
func TitleFor(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Untitled
	}

	line := trimmed
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	// "# # foo" would otherwise leave a marker behind
	for headingMarker.MatchString(line) {
		line = strings.TrimSpace(headingMarker.ReplaceAllString(line, ""))
	}

	line = strings.TrimSpace(truncateRunes(line, MaxTitleLength))
	if line == "" || headingMarker.MatchString(line) {
		return Untitled
	}
	return line
}

// PreviewFor derives the card snippet from the first PreviewLines lines of a note.
func PreviewFor(content string) string {
	normalized := normalizeNewlines(content)

	lines := strings.SplitN(normalized, "\n", PreviewLines+1)
	if len(lines) > PreviewLines {
		lines = lines[:PreviewLines]
	}

	preview := strings.TrimSpace(strings.Join(lines, "\n"))
	if preview == "" {
		return EmptyPreview
	}
	return truncateRunes(preview, MaxPreviewLength)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
