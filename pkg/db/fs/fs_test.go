package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "notes"), true, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s, err := New(dir, true)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, v1.StatusOK, s.Status())

	_, err = New(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestSanitizeID(t *testing.T) {
	testcases := map[string]v1.ID{
		"note_1625025715000": "note_1625025715000",
		"../../etc/passwd":   "etcpasswd",
		"héllo wörld":        "hllowrld",
		"":                   "note",
		"/..":                "note",
	}
	for input, expected := range testcases {
		assert.Equal(t, expected, SanitizeID(input), input)
	}
}

func TestCreateListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithClock(fixedClock(1625025715000)))

	n, err := s.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1.ID("note_1625025715000"), n.ID)
	assert.Equal(t, "", n.Content)
	assert.FileExists(t, n.Path)

	require.NoError(t, s.Update(ctx, n.ID, "# Buy milk\nand eggs"))

	notes, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "# Buy milk\nand eggs", notes[0].Content)
	assert.Equal(t, n.Path, notes[0].Path)

	require.NoError(t, s.Delete(ctx, n.ID))
	require.NoError(t, s.Delete(ctx, n.ID), "deleting a missing note succeeds")

	notes, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestCreateCollisionSuffix(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithClock(fixedClock(1000)))

	var ids []v1.ID
	for i := 0; i < MaxCreateAttempts; i++ {
		n, err := s.Create(ctx)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []v1.ID{"note_1000", "note_1000_1", "note_1000_2", "note_1000_3", "note_1000_4"}, ids)

	_, err := s.Create(ctx)
	assert.Error(t, err, "every candidate id is taken")
}

func TestListOrderAndFiltering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	files := map[string]string{
		"note_100.md":   "old",
		"note_300.MD":   "newest",
		"note_200.md":   "middle",
		"readme.txt":    "not a note",
		".md":           "no stem",
		"scratch.md.db": "not a note either",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(s.Directory, name), []byte(content), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(s.Directory, "dir.md"), 0700))

	notes, err := s.List(ctx)
	require.NoError(t, err)

	var got []string
	for _, n := range notes {
		got = append(got, n.Content)
	}
	assert.Equal(t, []string{"newest", "middle", "old"}, got)
}

func TestOutsideFilesKeepTheirNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(s.Directory, "my note.md"), []byte("orig"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Directory, "note_1.MD"), []byte("upper"), 0644))

	notes, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1, "a name Update could not address is not listed")
	assert.Equal(t, v1.ID("note_1"), notes[0].ID)

	require.NoError(t, s.Update(ctx, "note_1", "edited"))
	b, err := os.ReadFile(filepath.Join(s.Directory, "note_1.MD"))
	require.NoError(t, err)
	assert.Equal(t, "edited", string(b))

	notes, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1, "the update did not leave a second file behind")
	assert.Equal(t, "edited", notes[0].Content)

	require.NoError(t, s.Delete(ctx, "note_1"))
	assert.NoFileExists(t, filepath.Join(s.Directory, "note_1.MD"))

	_, interesting := s.translate(fsnotify.Event{Name: filepath.Join(s.Directory, "my note.md"), Op: fsnotify.Write})
	assert.False(t, interesting)
}

func TestUpdateCannotEscapeDirectory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Update(ctx, "../escape", "x"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(s.Directory), "escape.md"))
	assert.FileExists(t, filepath.Join(s.Directory, "escape.md"))
}

func TestTranslateIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Update(ctx, "note_1", "ours"))
	path := filepath.Join(s.Directory, "note_1.md")

	_, interesting := s.translate(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.False(t, interesting, "echo of our own write")

	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0644))
	ev, interesting := s.translate(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.True(t, interesting)
	assert.Equal(t, db.Event{ID: "note_1"}, ev)

	require.NoError(t, s.Delete(ctx, "note_1"))
	_, interesting = s.translate(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	assert.False(t, interesting, "echo of our own delete")

	_, interesting = s.translate(fsnotify.Event{Name: filepath.Join(s.Directory, "x.txt"), Op: fsnotify.Write})
	assert.False(t, interesting)
}

func TestWatchReportsOutsideChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestStore(t)

	events, err := s.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(s.Directory, "note_2.md")
	require.NoError(t, os.WriteFile(path, []byte("theirs"), 0644))

	waitFor := func(match func(db.Event) bool) bool {
		deadline := time.After(5 * time.Second)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return false
				}
				if match(ev) {
					return true
				}
			case <-deadline:
				return false
			}
		}
	}

	assert.True(t, waitFor(func(ev db.Event) bool { return ev.ID == "note_2" && !ev.Removed }))

	require.NoError(t, os.Remove(path))
	assert.True(t, waitFor(func(ev db.Event) bool { return ev.ID == "note_2" && ev.Removed }))

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}
