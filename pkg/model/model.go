// Package model is the terminal front-end: a sidebar of note cards, a
// rendered preview of the selected card, and an editor box for the one note
// being edited.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/byxorna/stickies/pkg/app"
	"github.com/byxorna/stickies/pkg/cards"
	"github.com/byxorna/stickies/pkg/db"
	"github.com/byxorna/stickies/pkg/notify"
	"github.com/byxorna/stickies/pkg/session"
	"github.com/byxorna/stickies/pkg/text"
	"github.com/byxorna/stickies/pkg/types/v1"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
)

// rect is a screen region in cells
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

type Model struct {
	ctx      context.Context
	wb       *app.Workbench
	notifier notify.Notifier
	log      zerolog.Logger

	keys    keyMap
	list    list.Model
	editor  textarea.Model
	help    help.Model
	spinner spinner.Model

	snapshots chan session.Snapshot
	snap      session.Snapshot
	events    <-chan db.Event

	// editing is set from the moment a note is opened until a close or delete
	// has been handed to the session
	editing bool
	busy    bool

	preview        string
	previewKey     string
	pendingPreview string

	statusMessage string
	statusIsError bool

	width, height int
	showSidebar   bool
	editorBox     rect
}

// New builds the UI over wb. Outside changes are followed when the backend
// can report them.
func New(ctx context.Context, wb *app.Workbench, notifier notify.Notifier, log zerolog.Logger) Model {
	if notifier == nil {
		notifier = notify.Noop{}
	}

	l := list.New(nil, newCardDelegate(), 0, 0)
	l.Title = text.EmojiNotebook + " Stickies"
	l.SetShowHelp(false)
	l.SetStatusBarItemName("note", "notes")
	l.Filter = filterCards
	l.DisableQuitKeybindings()

	ed := textarea.New()
	ed.Placeholder = text.EmptyPreview
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.MaxHeight = 0

	m := Model{
		ctx:         ctx,
		wb:          wb,
		notifier:    notifier,
		log:         log.With().Str("component", "ui").Logger(),
		keys:        DefaultKeyMap(),
		list:        l,
		editor:      ed,
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		snapshots:   make(chan session.Snapshot, 1),
		showSidebar: wb.Config == nil || wb.Config.Sidebar,
	}

	wb.Session().OnChange(m.forward)
	if events, ok := wb.Watch(ctx); ok {
		m.events = events
	}
	return m
}

// forward hands a session change to the UI loop, replacing one that has not
// been picked up yet.
func (m Model) forward(s session.Snapshot) {
	for {
		select {
		case m.snapshots <- s:
			return
		default:
		}
		select {
		case <-m.snapshots:
		default:
		}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(false), waitForSnapshot(m.snapshots)}
	if m.events != nil {
		cmds = append(cmds, waitForChange(m.events))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, m.refreshPreview()

	case loadedMsg:
		if msg.err != nil && !quiet(msg.err) {
			m.setError(msg.err)
		}
		return m, m.refreshList()

	case snapshotMsg:
		prev := m.snap
		m.snap = session.Snapshot(msg)
		cmds = append(cmds, waitForSnapshot(m.snapshots))
		if m.snap.Status.Failed() && m.snap.Status != prev.Status {
			m.sendNotification(prev.Title)
		}
		if m.snap.Status == session.StatusSaving && prev.Status != session.StatusSaving {
			cmds = append(cmds, m.spinner.Tick)
		}
		// card titles follow the draft
		cmds = append(cmds, m.refreshList())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.snap.Status != session.StatusSaving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noteCreatedMsg:
		m.busy = false
		if msg.err != nil {
			if !quiet(msg.err) {
				m.setError(msg.err)
			}
			return m, nil
		}
		m.list.ResetFilter()
		cmds = append(cmds, m.list.SetItems(itemsFromCards(m.wb.Registry().Cards())))
		m.list.Select(0)
		cmds = append(cmds, m.refreshPreview(), m.startEditing(msg.card.Content()))
		return m, tea.Batch(cmds...)

	case noteOpenedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		return m, m.startEditing(m.wb.Session().Text())

	case sessionDoneMsg:
		m.busy = false
		if msg.err != nil && !quiet(msg.err) {
			m.log.Warn().Err(msg.err).Stringer("event", msg.event).Msg("editor event failed")
		}
		if m.wb.Session().State() == session.Open {
			// a failed delete leaves the note open
			if msg.event == session.EventDelete {
				return m, m.startEditing(m.wb.Session().Text())
			}
			return m, nil
		}
		return m, m.refreshList()

	case noteChangedMsg:
		m.log.Debug().Str("id", msg.ID.String()).Bool("removed", msg.Removed).Msg("note changed outside")
		return m, tea.Batch(m.refreshCmd(db.Event(msg)), waitForChange(m.events))

	case watchClosedMsg:
		m.events = nil
		return m, nil

	case previewRenderedMsg:
		if msg.key == m.pendingPreview {
			m.preview = msg.content
			m.previewKey = msg.key
			m.pendingPreview = ""
		}
		return m, nil

	case statusMsg:
		m.statusMessage = string(msg)
		m.statusIsError = false
		return m, nil

	case errMsg:
		m.setError(msg.err)
		return m, nil

	case tea.MouseMsg:
		if m.editing && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress &&
			!m.editorBox.contains(msg.X, msg.Y) {
			return m, m.closeWith(session.EventClickOutside)
		}
		if !m.editing {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, tea.Batch(cmd, m.refreshPreview())
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, m.quitCmd()
		}
		if m.editing {
			return m.updateEditor(msg)
		}
		return m.updateBrowser(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close) && m.wb.Session().EscapeBound():
		return m, m.closeWith(session.EventEscape)
	case key.Matches(msg, m.keys.CloseButton):
		return m, m.closeWith(session.EventCloseButton)
	case key.Matches(msg, m.keys.Delete):
		return m, m.closeWith(session.EventDelete)
	case key.Matches(msg, m.keys.Blur):
		return m, m.eventCmd(session.EventBlur)
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.wb.Session().Edit(after)
	}
	return m, cmd
}

func (m Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't match any of the keys below if we're actively filtering.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, tea.Batch(cmd, m.refreshPreview())
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quitCmd()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		return m, m.refreshPreview()
	case key.Matches(msg, m.keys.New):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.statusMessage = ""
		return m, m.newNoteCmd()
	case key.Matches(msg, m.keys.Open):
		c := m.selected()
		if c == nil || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.openCmd(c.ID())
	case key.Matches(msg, m.keys.Copy):
		if c := m.selected(); c != nil {
			return m, copyCmd(c)
		}
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd(true)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.refreshPreview())
}

// startEditing shows the editor seeded with content, cursor at the end.
func (m *Model) startEditing(content string) tea.Cmd {
	m.editing = true
	m.keys.setEditing(true)
	m.editor.SetValue(content)
	m.layout()
	return m.editor.Focus()
}

// closeWith hides the editor and hands ev to the session.
func (m *Model) closeWith(ev session.Event) tea.Cmd {
	m.editing = false
	m.busy = true
	m.keys.setEditing(false)
	m.editor.Blur()
	m.layout()
	return m.eventCmd(ev)
}

func (m *Model) setError(err error) {
	m.log.Error().Err(err).Msg("ui error")
	m.statusMessage = err.Error()
	m.statusIsError = true
}

func (m *Model) sendNotification(title string) {
	body := title
	if body == "" {
		body = text.Untitled
	}
	err := m.notifier.Send(notify.Notification{
		ChannelID: notify.DefaultChannel.ID,
		Title:     string(m.snap.Status),
		Body:      body,
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("unable to send notification")
	}
}

func (m Model) selected() *cards.Card {
	if ci, ok := m.list.SelectedItem().(cardItem); ok {
		return ci.Card
	}
	return nil
}

func (m *Model) refreshList() tea.Cmd {
	cmd := m.list.SetItems(itemsFromCards(m.wb.Registry().Cards()))
	return tea.Batch(cmd, m.refreshPreview())
}

// refreshPreview renders the selected card unless that rendering is current
// or already on its way.
func (m *Model) refreshPreview() tea.Cmd {
	c := m.selected()
	if c == nil {
		m.preview, m.previewKey = "", ""
		return nil
	}
	width := m.mainWidth()
	key := previewKey(c, width)
	if key == m.previewKey || key == m.pendingPreview {
		return nil
	}
	m.pendingPreview = key
	return renderPreviewCmd(c, width)
}

func (m Model) sidebarWidth() int {
	if !m.showSidebar {
		return 0
	}
	return max(sidebarMinWidth, m.width/3)
}

func (m Model) mainWidth() int {
	return max(0, m.width-m.sidebarWidth())
}

func (m Model) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) layout() {
	bodyH := max(0, m.height-m.footerHeight())
	// border on the right
	m.list.SetSize(max(0, m.sidebarWidth()-1), bodyH)
	m.help.Width = m.width

	box := rect{
		x: m.sidebarWidth() + editorMargin,
		y: 1,
		w: max(0, m.mainWidth()-2*editorMargin),
		h: max(0, bodyH-2),
	}
	m.editorBox = box
	frameW, frameH := editorBoxStyle.GetFrameSize()
	// the title line and a blank line sit above the text
	m.editor.SetWidth(max(1, box.w-frameW))
	m.editor.SetHeight(max(1, box.h-frameH-2))
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	bodyH := max(0, m.height-m.footerHeight())

	var main string
	if m.editing {
		main = m.editorView()
	} else {
		main = lipgloss.NewStyle().MaxHeight(bodyH).Render(m.preview)
	}
	main = lipgloss.NewStyle().Width(m.mainWidth()).Height(bodyH).Render(main)

	body := main
	if m.showSidebar {
		side := sidebarStyle.Height(bodyH).Render(m.list.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBarView(), m.help.View(m.keys))
}

func (m Model) editorView() string {
	title := m.snap.Title
	if title == "" {
		title = text.TitleFor(m.editor.Value())
	}
	header := editorTitleStyle.Render(text.EmojiEditing+" "+title) + " " + m.statusWord()

	inner := lipgloss.JoinVertical(lipgloss.Left, header, "", m.editor.View())
	box := editorBoxStyle.
		Width(max(0, m.editorBox.w-2)).
		Height(max(0, m.editorBox.h-2)).
		Render(inner)
	return lipgloss.NewStyle().Margin(m.editorBox.y, editorMargin).Render(box)
}

func (m Model) statusWord() string {
	switch m.snap.Status {
	case session.StatusSaving:
		return statusSavingStyle.Render(m.spinner.View() + string(m.snap.Status))
	case session.StatusSaved:
		return statusSavedStyle.Render(text.EmojiSaved + " " + string(m.snap.Status))
	case session.StatusSaveFailed, session.StatusDeleteFailed:
		return statusFailedStyle.Render(text.EmojiFailed + " " + string(m.snap.Status))
	}
	return ""
}

func (m Model) statusBarView() string {
	logo := logoStyle.Render("stickies")
	where := " " + m.wb.Location() + " "
	if st := m.wb.SyncStatus(); st != v1.StatusOK {
		where += fmt.Sprintf("(%s) ", st)
	}
	location := statusBarStyle.Render(where)

	var note string
	if m.statusMessage != "" {
		note = " " + m.statusMessage + " "
	} else if m.snap.State == session.Closed && m.snap.Status != session.StatusNone {
		note = fmt.Sprintf(" %s ", m.snap.Status)
	}
	avail := max(0, m.width-lipgloss.Width(logo)-lipgloss.Width(location))
	note = text.TruncateWithTail(note, uint(avail), text.Ellipsis)
	padding := strings.Repeat(" ", max(0, avail-runewidth.StringWidth(note)))

	switch {
	case m.statusIsError:
		note = errorMessageStyle.Render(note)
	default:
		note = statusMessageStyle.Render(note)
	}
	return logo + location + note + statusBarStyle.Render(padding)
}
