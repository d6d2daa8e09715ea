package model

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines a set of keybindings. To work for help it must satisfy
// key.Map. Browsing and editing bindings are switched on and off together
// with the editor.
type keyMap struct {
	// Browsing.
	New     key.Binding
	Open    key.Binding
	Copy    key.Binding
	Reload  key.Binding
	Sidebar key.Binding
	Help    key.Binding
	Quit    key.Binding

	// Editing.
	Close       key.Binding
	CloseButton key.Binding
	Blur        key.Binding
	Delete      key.Binding

	ForceQuit key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view. It's part
// of the key.Map interface.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Open, k.Close, k.Blur, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view. It's part of the
// key.Map interface.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Open, k.Copy, k.Reload},
		{k.Close, k.CloseButton, k.Blur, k.Delete},
		{k.Sidebar, k.Help, k.Quit, k.ForceQuit},
	}
}

func (k *keyMap) setEditing(editing bool) {
	for _, b := range []*key.Binding{&k.New, &k.Open, &k.Copy, &k.Reload, &k.Quit} {
		b.SetEnabled(!editing)
	}
	for _, b := range []*key.Binding{&k.Close, &k.CloseButton, &k.Blur, &k.Delete} {
		b.SetEnabled(editing)
	}
}

// DefaultKeyMap returns a default set of keybindings.
func DefaultKeyMap() keyMap {
	k := keyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle sidebar"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),

		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		CloseButton: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close"),
		),
		Blur: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "save now"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete note"),
		),

		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "save and quit"),
		),
	}
	k.setEditing(false)
	return k
}
