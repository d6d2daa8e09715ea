package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
)

var errInvalidNote = errors.New("invalid note")

// HandlerFunc serves one command. The returned value is CBOR-encoded as the reply.
type HandlerFunc func(ctx context.Context, args cbor.RawMessage) (any, error)

// Router dispatches commands to registered handlers. NewRouter wires the four
// note commands to a db.DB.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	log      zerolog.Logger
}

func NewRouter(store db.DB, log zerolog.Logger) *Router {
	r := &Router{
		handlers: map[string]HandlerFunc{},
		log:      log,
	}

	r.Handle(CmdListNotes, func(ctx context.Context, _ cbor.RawMessage) (any, error) {
		notes, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []NoteRecord{}
		}
		return notes, nil
	})

	r.Handle(CmdCreateNote, func(ctx context.Context, _ cbor.RawMessage) (any, error) {
		n, err := store.Create(ctx)
		if err != nil {
			return nil, err
		}
		return CreateNoteResponse{ID: n.ID, Path: n.Path, Content: n.Content}, nil
	})

	r.Handle(CmdUpdateNote, func(ctx context.Context, args cbor.RawMessage) (any, error) {
		var req UpdateNoteRequest
		if err := Unmarshal(args, &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		n := v1.Note{ID: req.ID, Content: req.Content}
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidNote, err)
		}
		return nil, store.Update(ctx, n.ID, n.Content)
	})

	r.Handle(CmdDeleteNote, func(ctx context.Context, args cbor.RawMessage) (any, error) {
		var req DeleteNoteRequest
		if err := Unmarshal(args, &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		n := v1.Note{ID: req.ID}
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidNote, err)
		}
		return nil, store.Delete(ctx, n.ID)
	})

	return r
}

// Handle registers h for command, replacing any previous handler.
func (r *Router) Handle(command string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[command] = h
}

func (r *Router) Dispatch(ctx context.Context, command string, args cbor.RawMessage) (cbor.RawMessage, error) {
	r.mu.RLock()
	h, ok := r.handlers[command]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}

	result, err := h(ctx, args)
	if err != nil {
		r.log.Debug().Err(err).Str("command", command).Msg("command failed")
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	if result == nil {
		return nil, nil
	}

	encoded, err := Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%s: encode reply: %w", command, err)
	}
	return encoded, nil
}

// Invoke satisfies Invoker, running the command in-process but still through
// the CBOR boundary so local and remote hosts behave the same.
func (r *Router) Invoke(ctx context.Context, command string, args any, reply any) error {
	encoded, err := Marshal(args)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", command, err)
	}

	result, err := r.Dispatch(ctx, command, encoded)
	if err != nil {
		return err
	}
	return decodeReply(command, result, reply)
}

func decodeReply(command string, result cbor.RawMessage, reply any) error {
	if reply == nil || len(result) == 0 {
		return nil
	}
	if err := Unmarshal(result, reply); err != nil {
		return fmt.Errorf("%s: decode reply: %w", command, err)
	}
	return nil
}

var _ Invoker = (*Router)(nil)
