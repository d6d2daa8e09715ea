package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/session"
	"github.com/byxorna/stickies/pkg/store"
	"github.com/byxorna/stickies/pkg/types/v1"
	tea "github.com/charmbracelet/bubbletea"
)

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type statusMsg string
type loadedMsg struct{ err error }
type snapshotMsg session.Snapshot
type noteChangedMsg db.Event
type watchClosedMsg struct{}

type noteCreatedMsg struct {
	card *cards.Card
	err  error
}

type noteOpenedMsg struct {
	id  v1.ID
	err error
}

// sessionDoneMsg reports the outcome of an editor event run off the UI loop
type sessionDoneMsg struct {
	event session.Event
	err   error
}

type previewRenderedMsg struct {
	key     string
	content string
}

func (m Model) loadCmd(reload bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if reload {
			err = m.wb.Reload(m.ctx)
		} else {
			err = m.wb.Load(m.ctx)
		}
		return loadedMsg{err: err}
	}
}

func (m Model) refreshCmd(ev db.Event) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.wb.Refresh(m.ctx, ev)}
	}
}

func (m Model) newNoteCmd() tea.Cmd {
	return func() tea.Msg {
		card, err := m.wb.NewNote(m.ctx)
		return noteCreatedMsg{card: card, err: err}
	}
}

func (m Model) openCmd(id v1.ID) tea.Cmd {
	return func() tea.Msg {
		return noteOpenedMsg{id: id, err: m.wb.Open(m.ctx, id)}
	}
}

func (m Model) eventCmd(ev session.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionDoneMsg{event: ev, err: m.wb.Session().HandleEvent(m.ctx, ev)}
	}
}

// quitCmd saves and closes the open note before quitting.
func (m Model) quitCmd() tea.Cmd {
	return tea.Sequence(m.eventCmd(session.EventEscape), tea.Quit)
}

func copyCmd(c *cards.Card) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(c.Content()); err != nil {
			return errMsg{fmt.Errorf("unable to copy %s: %w", c.Title(), err)}
		}
		return statusMsg(fmt.Sprintf("Copied %q", c.Title()))
	}
}

// waitForSnapshot delivers the next session change. It is issued again after
// every snapshotMsg.
func waitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func waitForChange(events <-chan db.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return noteChangedMsg(ev)
	}
}

// quiet reports errors that are only worth a log line, not a status message.
func quiet(err error) bool {
	return err == nil || errors.Is(err, store.ErrUnavailable) || errors.Is(err, context.Canceled)
}
