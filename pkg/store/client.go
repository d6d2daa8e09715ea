// Package store is the client side of the note commands. It is the only
// place the UI talks to a host.Invoker.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/byxorna/stickies/pkg/host"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable means there is no host to send commands to. Callers treat
	// it as a no-op.
	ErrUnavailable = errors.New("note store unavailable")
	// ErrMalformedResponse is returned when a reply lacks a required field
	ErrMalformedResponse = errors.New("malformed response")
)

type Client struct {
	inv host.Invoker
	log zerolog.Logger
}

// New returns a Client over inv. A nil inv yields a Client whose every call
// logs a warning and returns ErrUnavailable.
func New(inv host.Invoker, log zerolog.Logger) *Client {
	return &Client{inv: inv, log: log.With().Str("component", "store").Logger()}
}

func (c *Client) Available() bool {
	return c != nil && c.inv != nil
}

func (c *Client) unavailable(command string) error {
	c.log.Warn().Str("command", command).Msg("no host to invoke, skipping")
	return ErrUnavailable
}

// List returns every note in the order the backend reports them.
func (c *Client) List(ctx context.Context) ([]v1.Note, error) {
	if !c.Available() {
		return nil, c.unavailable(host.CmdListNotes)
	}
	var notes []host.NoteRecord
	if err := c.inv.Invoke(ctx, host.CmdListNotes, nil, &notes); err != nil {
		c.log.Error().Err(err).Msg("failed to list notes")
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Create asks the host for a new empty note.
func (c *Client) Create(ctx context.Context) (v1.Note, error) {
	if !c.Available() {
		return v1.Note{}, c.unavailable(host.CmdCreateNote)
	}
	var res host.CreateNoteResponse
	if err := c.inv.Invoke(ctx, host.CmdCreateNote, nil, &res); err != nil {
		c.log.Error().Err(err).Msg("failed to create note")
		return v1.Note{}, fmt.Errorf("create note: %w", err)
	}
	if res.ID == "" {
		c.log.Error().Msg("create_note reply carried no id")
		return v1.Note{}, fmt.Errorf("create note: %w: missing id", ErrMalformedResponse)
	}
	return v1.Note{ID: res.ID, Content: res.Content, Path: res.Path}, nil
}

func (c *Client) Update(ctx context.Context, id v1.ID, content string) error {
	if !c.Available() {
		return c.unavailable(host.CmdUpdateNote)
	}
	err := c.inv.Invoke(ctx, host.CmdUpdateNote, host.UpdateNoteRequest{ID: id, Content: content}, nil)
	if err != nil {
		c.log.Error().Err(err).Str("id", id.String()).Msg("failed to save note")
		return fmt.Errorf("update note %s: %w", id, err)
	}
	c.log.Debug().Str("id", id.String()).Int("bytes", len(content)).Msg("saved note")
	return nil
}

func (c *Client) Delete(ctx context.Context, id v1.ID) error {
	if !c.Available() {
		return c.unavailable(host.CmdDeleteNote)
	}
	if err := c.inv.Invoke(ctx, host.CmdDeleteNote, host.DeleteNoteRequest{ID: id}, nil); err != nil {
		c.log.Error().Err(err).Str("id", id.String()).Msg("failed to delete note")
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	c.log.Debug().Str("id", id.String()).Msg("deleted note")
	return nil
}
