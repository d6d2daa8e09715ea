// Package storetest provides an Invoker that records the commands passing
// through it, for tests of the packages built on the store client.
package storetest

import (
	"context"
	"sync"

	"github.com/byxorna/stickies/pkg/db/memory"
	"github.com/byxorna/stickies/pkg/host"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/rs/zerolog"
)

// Call is one recorded command
type Call struct {
	Command string
	Args    any
}

// Recorder wraps an Invoker. Failures registered with Fail are returned
// instead of forwarding the command.
type Recorder struct {
	next host.Invoker

	mu    sync.Mutex
	calls []Call
	fail  map[string]error
}

func NewRecorder(next host.Invoker) *Recorder {
	return &Recorder{next: next, fail: map[string]error{}}
}

// NewMemory records commands served by a Router over an in-memory store.
func NewMemory(ids ...string) (*Recorder, *memory.Store) {
	typed := make([]v1.ID, len(ids))
	for i, id := range ids {
		typed[i] = v1.ID(id)
	}
	backend := memory.New().WithIDs(typed...)
	return NewRecorder(host.NewRouter(backend, zerolog.Nop())), backend
}

func (r *Recorder) Invoke(ctx context.Context, command string, args any, reply any) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: command, Args: args})
	err := r.fail[command]
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.next.Invoke(ctx, command, args, reply)
}

// Fail makes every later call of command return err; a nil err clears it.
func (r *Recorder) Fail(command string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, command)
		return
	}
	r.fail[command] = err
}

// Calls returns the recorded calls of command, or all of them when command is empty.
func (r *Recorder) Calls(command string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if command == "" || c.Command == command {
			out = append(out, c)
		}
	}
	return out
}

// Updates returns the payloads of every update_note call, in order.
func (r *Recorder) Updates() []host.UpdateNoteRequest {
	var out []host.UpdateNoteRequest
	for _, c := range r.Calls(host.CmdUpdateNote) {
		if req, ok := c.Args.(host.UpdateNoteRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

var _ host.Invoker = (*Recorder)(nil)
