package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTitleFor(t *testing.T) {
	testcases := map[string]string{
		"":                     Untitled,
		"   \n\t ":             Untitled,
		"# Buy milk\nand eggs": "Buy milk",
		"###### deep":          "deep",
		"####### seven":        "####### seven",
		"#nospace":             "#nospace",
		"# \nbody":             Untitled,
		"# # nested":           "nested",
		"  plain first line  ": "plain first line",
		"line one\r\nline two": "line one",
		"\n\n  leading blanks": "leading blanks",
	}

	for input, expected := range testcases {
		assert.Equal(t, expected, TitleFor(input), "TitleFor(%q)", input)
	}
}

func TestTitleForTruncates(t *testing.T) {
	long := "# " + strings.Repeat("é", 200)
	title := TitleFor(long)
	assert.Equal(t, MaxTitleLength, utf8.RuneCountInString(title))
	assert.False(t, headingMarker.MatchString(title))
}

func TestTitleForBounds(t *testing.T) {
	inputs := []string{
		"", "#", "# ", "## a", strings.Repeat("#", 90), "# " + strings.Repeat("x", 500),
		strings.Repeat("# ", 60) + "tail", "\r\n\r\n# hi", "x\ny\nz",
	}
	for _, in := range inputs {
		title := TitleFor(in)
		assert.LessOrEqual(t, utf8.RuneCountInString(title), MaxTitleLength, "TitleFor(%q)", in)
		assert.False(t, headingMarker.MatchString(title), "TitleFor(%q) = %q", in, title)
	}
}

func TestPreviewFor(t *testing.T) {
	assert.Equal(t, EmptyPreview, PreviewFor(""))
	assert.Equal(t, EmptyPreview, PreviewFor(" \r\n \n"))
	assert.Equal(t, "a\nb", PreviewFor("a\r\nb"))
	assert.Equal(t, "a\nb", PreviewFor("a\rb\n"))
}

func TestPreviewForUsesFirstSixLines(t *testing.T) {
	in := "1\n2\n3\n4\n5\n6\n7\n8"
	assert.Equal(t, "1\n2\n3\n4\n5\n6", PreviewFor(in))
}

func TestPreviewForTruncates(t *testing.T) {
	in := strings.Repeat("ü", 1000) + "\nsecond"
	preview := PreviewFor(in)
	assert.Equal(t, MaxPreviewLength, utf8.RuneCountInString(preview))
	assert.NotContains(t, preview, "second")
}

func TestPreviewForBounds(t *testing.T) {
	in := strings.Repeat("line of text\n", 40)
	preview := PreviewFor(in)
	assert.LessOrEqual(t, utf8.RuneCountInString(preview), MaxPreviewLength)
	assert.LessOrEqual(t, strings.Count(preview, "\n"), PreviewLines-1)
}

func TestNormalize(t *testing.T) {
	out, err := Normalize("Crème Brûlée")
	assert.NoError(t, err)
	assert.Equal(t, "creme brulee", out)
}
