package session

import (
	"context"

	"github.com/byxorna/stickies/pkg/types/v1"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Event is a user interaction with the editor.
type Event int

const (
	EventEscape Event = iota
	EventCloseButton
	EventClickOutside
	EventBlur
	EventDelete
)

func (e Event) String() string {
	switch e {
	case EventEscape:
		return "escape"
	case EventCloseButton:
		return "close-button"
	case EventClickOutside:
		return "click-outside"
	case EventBlur:
		return "blur"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Status is the word shown next to the editor title.
type Status string

const (
	StatusNone         Status = ""
	StatusSaving       Status = "Saving…"
	StatusSaved        Status = "Saved"
	StatusSaveFailed   Status = "Save failed"
	StatusDeleteFailed Status = "Delete failed"
)

func (s Status) Failed() bool {
	return s == StatusSaveFailed || s == StatusDeleteFailed
}

type Snapshot struct {
	State  State
	NoteID v1.ID
	// Title is derived from the draft; empty while closed
	Title  string
	Status Status
	// Dirty is set while the draft differs from what was last saved
	Dirty bool
}

type action func(*Controller, context.Context) error

var transitions = map[State]map[Event]action{
	Open: {
		EventEscape:       (*Controller).RequestClose,
		EventCloseButton:  (*Controller).RequestClose,
		EventClickOutside: (*Controller).RequestClose,
		EventBlur:         (*Controller).Blur,
		EventDelete:       (*Controller).Delete,
	},
	Closed: {},
}
