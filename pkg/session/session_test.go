package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/host"
	"github.com/byxorna/stickies/pkg/store"
	"github.com/byxorna/stickies/pkg/store/storetest"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortDelay = 30 * time.Millisecond
	// long enough that the timer never fires during a test
	neverDelay = time.Hour
)

type fixture struct {
	rec      *storetest.Recorder
	registry *cards.Registry
	ctl      *Controller
}

func newFixture(t *testing.T, delay time.Duration, notes ...v1.Note) *fixture {
	t.Helper()
	rec, backend := storetest.NewMemory()
	backend.Seed(notes...)
	registry := cards.NewRegistry()
	registry.Load(notes)
	return &fixture{
		rec:      rec,
		registry: registry,
		ctl:      New(store.New(rec, zerolog.Nop()), registry, WithAutosaveDelay(delay)),
	}
}

func (f *fixture) open(t *testing.T, id v1.ID) *cards.Card {
	t.Helper()
	card, ok := f.registry.Get(id)
	require.True(t, ok)
	require.NoError(t, f.ctl.Open(context.Background(), card.Note(), card))
	return card
}

func TestOpenThenCloseWritesNothing(t *testing.T) {
	f := newFixture(t, shortDelay, v1.Note{ID: "a", Content: "hello"})
	f.open(t, "a")
	assert.True(t, f.ctl.EscapeBound())
	assert.Equal(t, Open, f.ctl.State())

	require.NoError(t, f.ctl.RequestClose(context.Background()))
	time.Sleep(3 * shortDelay)

	assert.Empty(t, f.rec.Updates())
	assert.Equal(t, Closed, f.ctl.State())
	assert.False(t, f.ctl.EscapeBound())
	assert.Equal(t, StatusNone, f.ctl.Snapshot().Status)
}

func TestEditThenCloseBeforeDelayWritesOnce(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a", Content: "hello"})
	card := f.open(t, "a")

	f.ctl.Edit("hello world")
	assert.Equal(t, "hello world", card.Content(), "card follows edits immediately")
	require.NoError(t, f.ctl.RequestClose(context.Background()))

	assert.Equal(t, []host.UpdateNoteRequest{{ID: "a", Content: "hello world"}}, f.rec.Updates())
	assert.Equal(t, StatusSaved, f.ctl.Snapshot().Status)
	assert.Equal(t, "hello world", card.Content())
	assert.Equal(t, "hello world", card.Title())
}

func TestRapidEditsCollapse(t *testing.T) {
	f := newFixture(t, shortDelay, v1.Note{ID: "a"})
	f.open(t, "a")

	for _, s := range []string{"h", "he", "hel", "hell", "hello"} {
		f.ctl.Edit(s)
	}

	require.Eventually(t, func() bool { return len(f.rec.Updates()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * shortDelay)
	assert.Equal(t, []host.UpdateNoteRequest{{ID: "a", Content: "hello"}}, f.rec.Updates())
	assert.Equal(t, Open, f.ctl.State(), "autosave keeps the note open")

	// already saved, so closing does not write again
	require.NoError(t, f.ctl.RequestClose(context.Background()))
	assert.Len(t, f.rec.Updates(), 1)
}

func TestTypingScenario(t *testing.T) {
	f := newFixture(t, shortDelay, v1.Note{ID: "n1"})
	card := f.open(t, "n1")

	var mu sync.Mutex
	var titles []string
	f.ctl.OnChange(func(s Snapshot) {
		mu.Lock()
		titles = append(titles, s.Title)
		mu.Unlock()
	})

	f.ctl.Edit("# Buy milk\nand eggs")
	assert.Equal(t, "Buy milk", f.ctl.Snapshot().Title)

	require.Eventually(t, func() bool { return f.ctl.Snapshot().Status == StatusSaved }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []host.UpdateNoteRequest{{ID: "n1", Content: "# Buy milk\nand eggs"}}, f.rec.Updates())
	assert.Equal(t, "Buy milk", card.Title())
	assert.False(t, f.ctl.Snapshot().Dirty)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, titles, "Buy milk")
}

func TestDeleteIssuesNoLaterUpdate(t *testing.T) {
	f := newFixture(t, shortDelay, v1.Note{ID: "a", Content: "x"}, v1.Note{ID: "b"})
	f.open(t, "a")
	f.ctl.Edit("pending edit")

	require.NoError(t, f.ctl.Delete(context.Background()))
	time.Sleep(3 * shortDelay)

	assert.Empty(t, f.rec.Updates())
	assert.Len(t, f.rec.Calls(host.CmdDeleteNote), 1)
	assert.Equal(t, Closed, f.ctl.State())
	_, ok := f.registry.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, f.registry.Len())
}

func TestDeleteFailureStaysOpen(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"})
	f.open(t, "a")
	f.rec.Fail(host.CmdDeleteNote, errors.New("permission denied"))

	err := f.ctl.Delete(context.Background())
	require.Error(t, err)
	assert.Equal(t, Open, f.ctl.State())
	assert.Equal(t, StatusDeleteFailed, f.ctl.Snapshot().Status)
	_, ok := f.registry.Get("a")
	assert.True(t, ok)
}

func TestSaveFailureStillCloses(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"})
	f.open(t, "a")
	f.rec.Fail(host.CmdUpdateNote, errors.New("disk full"))

	f.ctl.Edit("lost")
	err := f.ctl.RequestClose(context.Background())
	require.Error(t, err)
	assert.Equal(t, Closed, f.ctl.State())
	assert.Equal(t, StatusSaveFailed, f.ctl.Snapshot().Status)
}

func TestOpenStartsWithoutStatus(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"}, v1.Note{ID: "b"})
	f.open(t, "a")
	f.rec.Fail(host.CmdUpdateNote, errors.New("disk full"))
	f.ctl.Edit("lost")
	require.Error(t, f.ctl.RequestClose(context.Background()))
	require.Equal(t, StatusSaveFailed, f.ctl.Snapshot().Status)

	var seen []Snapshot
	f.ctl.OnChange(func(s Snapshot) { seen = append(seen, s) })
	f.open(t, "b")
	assert.Equal(t, StatusNone, f.ctl.Snapshot().Status, "b carries no status over from a")
	require.NotEmpty(t, seen)
	assert.Equal(t, StatusNone, seen[len(seen)-1].Status)

	// a new failure on b reads as a change of status
	f.ctl.Edit("also lost")
	require.Error(t, f.ctl.Blur(context.Background()))
	assert.Equal(t, StatusSaveFailed, f.ctl.Snapshot().Status)
}

func TestZeroDelaySavesEveryEdit(t *testing.T) {
	f := newFixture(t, 0, v1.Note{ID: "a"})
	f.open(t, "a")

	f.ctl.Edit("x")
	require.Eventually(t, func() bool { return len(f.rec.Updates()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Open, f.ctl.State())
}

func TestBlurFlushesAndStaysOpen(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"})
	f.open(t, "a")
	f.ctl.Edit("draft")

	require.NoError(t, f.ctl.HandleEvent(context.Background(), EventBlur))
	assert.Equal(t, Open, f.ctl.State())
	assert.Len(t, f.rec.Updates(), 1)

	// nothing new to write
	require.NoError(t, f.ctl.HandleEvent(context.Background(), EventBlur))
	assert.Len(t, f.rec.Updates(), 1)
}

func TestCloseEvents(t *testing.T) {
	for _, ev := range []Event{EventEscape, EventCloseButton, EventClickOutside} {
		t.Run(ev.String(), func(t *testing.T) {
			f := newFixture(t, neverDelay, v1.Note{ID: "a"})
			f.open(t, "a")
			f.ctl.Edit("typed")

			require.NoError(t, f.ctl.HandleEvent(context.Background(), ev))
			assert.Equal(t, Closed, f.ctl.State())
			assert.Equal(t, []host.UpdateNoteRequest{{ID: "a", Content: "typed"}}, f.rec.Updates())
		})
	}
}

func TestEventsIgnoredWhileClosed(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"})
	for _, ev := range []Event{EventEscape, EventCloseButton, EventClickOutside, EventBlur, EventDelete} {
		require.NoError(t, f.ctl.HandleEvent(context.Background(), ev))
	}
	f.ctl.Edit("ignored")
	assert.Empty(t, f.rec.Calls(""))
	assert.Equal(t, Closed, f.ctl.State())
}

func TestOpeningAnotherNoteSavesTheFirst(t *testing.T) {
	f := newFixture(t, neverDelay, v1.Note{ID: "a"}, v1.Note{ID: "b", Content: "bee"})
	f.open(t, "a")
	f.ctl.Edit("first draft")

	f.open(t, "b")
	assert.Equal(t, v1.ID("b"), f.ctl.Snapshot().NoteID)
	assert.Equal(t, "bee", f.ctl.Text())
	assert.Equal(t, []host.UpdateNoteRequest{{ID: "a", Content: "first draft"}}, f.rec.Updates())
}

func TestSaverIsReusedAcrossOpens(t *testing.T) {
	f := newFixture(t, shortDelay, v1.Note{ID: "a"}, v1.Note{ID: "b"})
	f.open(t, "a")
	saver := f.ctl.saver
	require.NoError(t, f.ctl.RequestClose(context.Background()))
	f.open(t, "b")
	assert.Same(t, saver, f.ctl.saver)
}

func TestTransportUnavailable(t *testing.T) {
	buf := &bytes.Buffer{}
	registry := cards.NewRegistry()
	registry.Load([]v1.Note{{ID: "a", Content: "offline"}})
	ctl := New(store.New(nil, zerolog.New(buf)), registry, WithAutosaveDelay(neverDelay))

	card, _ := registry.Get("a")
	require.NoError(t, ctl.Open(context.Background(), card.Note(), card))
	ctl.Edit("still typing")

	err := ctl.RequestClose(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Equal(t, Closed, ctl.State())
	assert.Equal(t, StatusNone, ctl.Snapshot().Status)
	assert.Equal(t, "still typing", card.Content())

	require.NoError(t, ctl.Open(context.Background(), card.Note(), card))
	assert.ErrorIs(t, ctl.Delete(context.Background()), store.ErrUnavailable)
	assert.Equal(t, Open, ctl.State())
	assert.Equal(t, StatusNone, ctl.Snapshot().Status)

	assert.Contains(t, buf.String(), `"level":"warn"`)
}

type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	updates []string
}

func (b *blockingStore) Update(_ context.Context, _ v1.ID, content string) error {
	b.mu.Lock()
	b.updates = append(b.updates, content)
	b.mu.Unlock()
	<-b.release
	return nil
}

func (b *blockingStore) Delete(context.Context, v1.ID) error { return nil }

func TestIdenticalInflightWriteIsNotRepeated(t *testing.T) {
	bs := &blockingStore{release: make(chan struct{})}
	registry := cards.NewRegistry()
	registry.Load([]v1.Note{{ID: "a"}})
	ctl := New(bs, registry, WithAutosaveDelay(shortDelay))
	card, _ := registry.Get("a")
	require.NoError(t, ctl.Open(context.Background(), card.Note(), card))

	ctl.Edit("same")
	require.Eventually(t, func() bool { return ctl.Snapshot().Status == StatusSaving }, time.Second, 5*time.Millisecond)

	done := make(chan error)
	go func() { done <- ctl.RequestClose(context.Background()) }()
	require.NoError(t, <-done, "close does not wait on the identical in-flight write")
	assert.Equal(t, Closed, ctl.State())

	close(bs.release)
	bs.mu.Lock()
	defer bs.mu.Unlock()
	assert.Equal(t, []string{"same"}, bs.updates)
}
