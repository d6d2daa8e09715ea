package v1

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// IDPrefix is the prefix of ids minted by the stores, followed by a unix
// millisecond timestamp and an optional collision suffix.
const IDPrefix = "note_"

// Note is a single note as exchanged with a store: an opaque id chosen by the
// store and unstructured text.
type Note struct {
	ID      ID     `cbor:"id" yaml:"id" validate:"required"`
	Content string `cbor:"content" yaml:"content" validate:""`
	// Path is where the note lives on disk, for stores that have one
	Path string `cbor:"path,omitempty" yaml:"path,omitempty" validate:""`
}

func (n *Note) Validate() error {
	validate := validator.New()
	return validate.Struct(*n)
}

// Created recovers the creation time from ids of the form note_<ms>[_n].
func (n *Note) Created() (time.Time, bool) {
	raw := strings.TrimPrefix(string(n.ID), IDPrefix)
	if raw == string(n.ID) {
		return time.Time{}, false
	}
	if i := strings.IndexByte(raw, '_'); i >= 0 {
		raw = raw[:i]
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (n *Note) Tasks() TaskListStatus {
	return TaskList(n.Content)
}
