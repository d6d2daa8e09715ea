package app

import (
	"context"
	"fmt"

	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/config"
	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/db/fs"
	"github.com/byxorna/stickies/pkg/db/memory"
	"github.com/byxorna/stickies/pkg/db/sqlite"
	"github.com/byxorna/stickies/pkg/host"
	"github.com/byxorna/stickies/pkg/host/ws"
	"github.com/byxorna/stickies/pkg/session"
	"github.com/byxorna/stickies/pkg/store"
	"github.com/rs/zerolog"
)

var (
	// CreateDirectoryIfMissing creates config.Directory if not already existing
	CreateDirectoryIfMissing = true
)

// OpenBackend opens the DB named by the configuration.
func OpenBackend(cfg *config.Config, log zerolog.Logger) (db.DB, error) {
	switch cfg.Backend {
	case db.TypeFS, "":
		return fs.New(cfg.Directory, CreateDirectoryIfMissing, fs.WithLogger(log))
	case db.TypeSQLite:
		path, err := cfg.DatabasePath()
		if err != nil {
			return nil, fmt.Errorf("unable to resolve database path: %w", err)
		}
		return sqlite.New(path, sqlite.WithLogger(log))
	case db.TypeMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// New builds a Workbench from configuration: either a local backend served
// by an in-process Router, or a connection to a remote `stickies serve`.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Workbench, error) {
	if cfg.Remote != "" {
		client, err := ws.Dial(ctx, cfg.Remote, log.With().Str("component", "ws").Logger())
		if err != nil {
			return nil, fmt.Errorf("unable to reach %s: %w", cfg.Remote, err)
		}
		w := NewWithInvoker(ctx, client, cfg, log)
		w.closers = append(w.closers, client.Close)
		w.location = ws.NormalizeURL(cfg.Remote)
		return w, nil
	}

	backend, err := OpenBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	w := NewWithInvoker(ctx, host.NewRouter(backend, log), cfg, log)
	w.backend = backend
	w.closers = append(w.closers, backend.Close)
	w.location = backend.StoragePath()
	return w, nil
}

// NewWithInvoker builds a Workbench over any invoker. A nil inv leaves the
// store unavailable and every operation a logged no-op.
func NewWithInvoker(ctx context.Context, inv host.Invoker, cfg *config.Config, log zerolog.Logger) *Workbench {
	if cfg == nil {
		c := config.Default
		cfg = &c
	}
	client := store.New(inv, log)
	registry := cards.NewRegistry()
	return &Workbench{
		Config:   cfg,
		client:   client,
		registry: registry,
		session: session.New(client, registry,
			session.WithAutosaveDelay(cfg.AutosaveDelay.Std()),
			session.WithLogger(log),
			session.WithContext(ctx)),
		log: log.With().Str("component", "workbench").Logger(),
	}
}
