// Package host is the command-dispatch boundary between the notes UI and the
// backend that owns the notes. Every call is keyed by a command name and
// carries a CBOR-encoded payload, whether it is served in-process by a Router
// or remotely over a websocket.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/fxamacker/cbor/v2"
)

// Command names understood by the host
const (
	CmdListNotes  = "list_notes"
	CmdCreateNote = "create_note"
	CmdUpdateNote = "update_note"
	CmdDeleteNote = "delete_note"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
)

// Invoker is the single asynchronous entry point every store operation goes
// through. args is encoded and reply, when non-nil, is decoded into.
type Invoker interface {
	Invoke(ctx context.Context, command string, args any, reply any) error
}

// Dispatcher serves already-encoded payloads; Router implements it and the
// websocket server sits on top of it.
type Dispatcher interface {
	Dispatch(ctx context.Context, command string, args cbor.RawMessage) (cbor.RawMessage, error)
}

type UpdateNoteRequest struct {
	ID      v1.ID  `cbor:"id"`
	Content string `cbor:"content"`
}

type DeleteNoteRequest struct {
	ID v1.ID `cbor:"id"`
}

type CreateNoteResponse struct {
	ID      v1.ID  `cbor:"id"`
	Path    string `cbor:"path"`
	Content string `cbor:"content"`
}

type NoteRecord = v1.Note

// CommandError carries a failure reported by the host for one command.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes a payload the way every host transport expects it.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes a host payload.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
