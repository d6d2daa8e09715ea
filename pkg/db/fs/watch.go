package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// Watch reports notes changed in the directory by something other than this
// Store. The channel is closed when ctx is done or the Store is closed.
func (x *Store) Watch(ctx context.Context) (<-chan db.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(x.Directory); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", x.Directory, err)
	}

	x.Lock()
	if x.watcher != nil {
		_ = x.watcher.Close()
	}
	x.watcher = watcher
	x.Unlock()

	events := make(chan db.Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				_ = x.Close()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				ev, interesting := x.translate(event)
				if !interesting {
					continue
				}
				x.log.Debug().Str("id", ev.ID.String()).Bool("removed", ev.Removed).Msg("note changed on disk")
				select {
				case events <- ev:
				case <-ctx.Done():
					_ = x.Close()
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				x.log.Warn().Err(err).Str("directory", x.Directory).Msg("watcher error")
			}
		}
	}()

	return events, nil
}

// translate maps a raw fsnotify event to a note event, dropping events for
// non-note files and echoes of this store's own writes.
func (x *Store) translate(event fsnotify.Event) (db.Event, bool) {
	name := filepath.Base(event.Name)
	if !strings.EqualFold(filepath.Ext(name), StorageExtension) {
		return db.Event{}, false
	}
	id := v1.ID(strings.TrimSuffix(name, filepath.Ext(name)))
	if id == "" || SanitizeID(string(id)) != id {
		return db.Event{}, false
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		x.Lock()
		_, ours := x.removed[id]
		delete(x.removed, id)
		delete(x.written, id)
		x.Unlock()
		return db.Event{ID: id, Removed: true}, !ours

	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		content, err := os.ReadFile(event.Name)
		if err != nil {
			// gone again before we could read it; the remove event follows
			return db.Event{}, false
		}
		sum := xxhash.Sum64(content)

		x.Lock()
		last, known := x.written[id]
		if !known || last != sum {
			x.written[id] = sum
		}
		x.Unlock()
		return db.Event{ID: id}, !known || last != sum
	}

	return db.Event{}, false
}
