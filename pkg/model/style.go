package model

import (
	"github.com/byxorna/stickies/pkg/ui"
	"github.com/charmbracelet/lipgloss"
)

const (
	sidebarMinWidth = 28
	editorMargin    = 2
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	divider = lipgloss.NewStyle().
		SetString("•").
		Padding(0, 1).
		Foreground(subtle).
		String()

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(subtle)

	previewStyle = lipgloss.NewStyle().Padding(0, 1)

	emptyPreviewStyle = lipgloss.NewStyle().
				Foreground(ui.DimNormal).
				Italic(true).
				Padding(1, 2)

	editorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(0, 1)

	editorTitleStyle = lipgloss.NewStyle().Bold(true)

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1a1a")).
			Background(ui.InstaYellow).
			Bold(true).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(ui.BrightGray).
			Background(ui.DarkGray)

	statusSavedStyle  = lipgloss.NewStyle().Foreground(ui.Green)
	statusSavingStyle = lipgloss.NewStyle().Foreground(ui.Yellow)
	statusFailedStyle = lipgloss.NewStyle().Foreground(ui.Red).Bold(true)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(ui.InstaMagenta)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(ui.Green).
				Background(ui.DarkGray)
)
