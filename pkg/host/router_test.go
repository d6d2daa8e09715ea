package host

import (
	"context"
	"errors"
	"testing"

	"github.com/byxorna/stickies/pkg/db/memory"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterCommands(t *testing.T) {
	ctx := context.Background()
	backend := memory.New().WithIDs("n1")
	r := NewRouter(backend, zerolog.Nop())

	var created CreateNoteResponse
	require.NoError(t, r.Invoke(ctx, CmdCreateNote, nil, &created))
	assert.Equal(t, v1.ID("n1"), created.ID)
	assert.Empty(t, created.Content)

	require.NoError(t, r.Invoke(ctx, CmdUpdateNote, UpdateNoteRequest{ID: "n1", Content: "hi"}, nil))

	var notes []NoteRecord
	require.NoError(t, r.Invoke(ctx, CmdListNotes, nil, &notes))
	assert.Equal(t, []NoteRecord{{ID: "n1", Content: "hi"}}, notes)

	require.NoError(t, r.Invoke(ctx, CmdDeleteNote, DeleteNoteRequest{ID: "n1"}, nil))
	notes = nil
	require.NoError(t, r.Invoke(ctx, CmdListNotes, nil, &notes))
	assert.Empty(t, notes)
}

func TestRouterRejectsInvalidNotes(t *testing.T) {
	r := NewRouter(memory.New(), zerolog.Nop())
	err := r.Invoke(context.Background(), CmdUpdateNote, UpdateNoteRequest{Content: "x"}, nil)
	assert.ErrorIs(t, err, errInvalidNote)

	err = r.Invoke(context.Background(), CmdDeleteNote, nil, nil)
	assert.ErrorIs(t, err, errInvalidNote)
}

func TestRouterUnknownCommand(t *testing.T) {
	r := NewRouter(memory.New(), zerolog.Nop())
	err := r.Invoke(context.Background(), "format_disk", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRouterCustomHandler(t *testing.T) {
	r := NewRouter(memory.New(), zerolog.Nop())
	boom := errors.New("boom")
	r.Handle(CmdListNotes, func(context.Context, cbor.RawMessage) (any, error) { return nil, boom })

	err := r.Invoke(context.Background(), CmdListNotes, nil, nil)
	assert.ErrorIs(t, err, boom)
}
