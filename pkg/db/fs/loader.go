package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

var (
	StorageExtension = ".md"
	StorageGlob      = "*.[mM][dD]"

	// MaxCreateAttempts bounds how many suffixed ids Create tries when the
	// timestamp id is already taken
	MaxCreateAttempts = 5
)

// Store keeps one markdown file per note, named <id>.md, in a single directory.
type Store struct {
	*sync.Mutex

	Directory string `yaml:"directory" validate:"required,dir"`

	status  v1.SyncStatus
	log     zerolog.Logger
	now     func() time.Time
	watcher *fsnotify.Watcher

	// written holds a hash of what this store last wrote per note, so the
	// watcher can tell our own writes apart from outside edits
	written map[v1.ID]uint64
	removed map[v1.ID]struct{}
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used to mint ids
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(dir string, createDirIfMissing bool, opts ...Option) (*Store, error) {
	expandedPath, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}

	s := Store{
		Mutex:     &sync.Mutex{},
		Directory: expandedPath,
		status:    v1.StatusUninitialized,
		log:       zerolog.Nop(),
		now:       time.Now,
		written:   map[v1.ID]uint64{},
		removed:   map[v1.ID]struct{}{},
	}
	for _, o := range opts {
		o(&s)
	}

	finfo, err := os.Stat(expandedPath)
	if err != nil || !finfo.IsDir() {
		if !createDirIfMissing {
			return nil, fmt.Errorf("notes directory %s does not exist", expandedPath)
		}
		if err := os.MkdirAll(expandedPath, 0700); err != nil {
			return nil, fmt.Errorf("error creating %s: %w", s.Directory, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("error validating storage provider: %w", err)
	}

	s.status = v1.StatusOK
	return &s, nil
}

func (x *Store) Validate() error {
	validate := validator.New()
	return validate.Struct(*x)
}

// SanitizeID keeps only [A-Za-z0-9_-] so an id can never escape the notes directory.
func SanitizeID(raw string) v1.ID {
	var b strings.Builder
	b.Grow(len(raw))
	for _, ch := range raw {
		if ch < 128 && (ch == '_' || ch == '-' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return "note"
	}
	return v1.ID(b.String())
}

func (x *Store) generateID() string {
	return fmt.Sprintf("%s%d", v1.IDPrefix, x.now().UnixMilli())
}

func (x *Store) StoragePath() string {
	return x.Directory
}

func (x *Store) StoragePathDoc(id v1.ID) string {
	return path.Join(x.Directory, string(SanitizeID(string(id)))+StorageExtension)
}

// pathFor finds the file of an existing note whatever the case of its
// extension, falling back to <id>.md.
func (x *Store) pathFor(id v1.ID) string {
	clean := string(SanitizeID(string(id)))
	matches, err := doublestar.Glob(os.DirFS(x.Directory), clean+strings.TrimPrefix(StorageGlob, "*"))
	if err == nil && len(matches) > 0 {
		return path.Join(x.Directory, matches[0])
	}
	return x.StoragePathDoc(id)
}

func (x *Store) Status() v1.SyncStatus {
	x.Lock()
	defer x.Unlock()
	return x.status
}

func (x *Store) setStatus(s v1.SyncStatus) {
	x.Lock()
	x.status = s
	x.Unlock()
}

// List returns every note file in the directory, in descending id order. With
// the note_<ms> scheme that is newest first.
func (x *Store) List(ctx context.Context) ([]v1.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fsys := os.DirFS(x.Directory)
	matches, err := doublestar.Glob(fsys, StorageGlob)
	if err != nil {
		return nil, fmt.Errorf("unable to list %s: %w", x.Directory, err)
	}

	notes := make([]v1.Note, 0, len(matches))
	for _, name := range matches {
		finfo, err := iofs.Stat(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("unable to stat %s: %w", name, err)
		}
		if !finfo.Mode().IsRegular() {
			continue
		}

		id := strings.TrimSuffix(name, filepath.Ext(name))
		if id == "" {
			continue
		}
		if SanitizeID(id) != v1.ID(id) {
			// Update and Delete could never reach this file under its own name
			x.log.Warn().Str("file", name).Msg("skipping note file whose name is not a valid id")
			continue
		}

		fullPath := path.Join(x.Directory, name)
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read note content (%s): %w", fullPath, err)
		}

		notes = append(notes, v1.Note{ID: v1.ID(id), Path: fullPath, Content: string(content)})
	}

	sort.Sort(sort.Reverse(v1.ByID(notes)))
	return notes, nil
}

// Create writes an empty note under a fresh id. The file is created
// exclusively; on a collision suffixed ids are tried.
func (x *Store) Create(ctx context.Context) (v1.Note, error) {
	if err := ctx.Err(); err != nil {
		return v1.Note{}, err
	}

	base := SanitizeID(x.generateID())
	content := ""

	for attempt := 0; ; attempt++ {
		id := base
		if attempt > 0 {
			id = SanitizeID(fmt.Sprintf("%s_%d", base, attempt))
		}
		targetpath := x.StoragePathDoc(id)

		f, err := os.OpenFile(targetpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if attempt+1 >= MaxCreateAttempts {
				x.setStatus(v1.StatusError)
				return v1.Note{}, fmt.Errorf("unable to create note file after %d tries: %w", MaxCreateAttempts, err)
			}
			continue
		}

		_, err = f.WriteString(content)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			x.setStatus(v1.StatusError)
			return v1.Note{}, fmt.Errorf("unable to write note %s: %w", id, err)
		}

		x.remember(id, content)
		x.log.Debug().Str("id", id.String()).Str("path", targetpath).Msg("created note")
		return v1.Note{ID: id, Path: targetpath, Content: content}, nil
	}
}

// Update overwrites the note file, creating it if it is missing.
func (x *Store) Update(ctx context.Context, id v1.ID, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	x.setStatus(v1.StatusSynchronizing)
	targetpath := x.pathFor(id)

	if err := os.WriteFile(targetpath, []byte(content), 0644); err != nil {
		x.setStatus(v1.StatusError)
		return fmt.Errorf("unable to write note file %s: %w", targetpath, err)
	}

	x.remember(SanitizeID(string(id)), content)
	x.setStatus(v1.StatusOK)
	return nil
}

func (x *Store) Delete(ctx context.Context, id v1.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := SanitizeID(string(id))
	targetpath := x.pathFor(clean)

	x.Lock()
	delete(x.written, clean)
	x.removed[clean] = struct{}{}
	x.Unlock()

	err := os.Remove(targetpath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		x.Lock()
		delete(x.removed, clean)
		x.Unlock()
		return fmt.Errorf("unable to delete note file %s: %w", targetpath, err)
	}
	return nil
}

func (x *Store) remember(id v1.ID, content string) {
	x.Lock()
	defer x.Unlock()
	x.written[id] = xxhash.Sum64String(content)
	delete(x.removed, id)
}

func (x *Store) Close() error {
	x.Lock()
	defer x.Unlock()
	if x.watcher != nil {
		err := x.watcher.Close()
		x.watcher = nil
		return err
	}
	return nil
}

var _ db.DB = (*Store)(nil)
