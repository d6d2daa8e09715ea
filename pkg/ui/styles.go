// Package ui holds the color palette shared by the terminal views.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type StyleFunc func(...string) string

func pair(dark, light string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: dark, Light: light}
}

var (
	Normal    = pair("#dddddd", "#1a1a1a")
	DimNormal = pair("#777777", "#A49FA5")

	BrightGray    = pair("#979797", "#847A85")
	DimBrightGray = pair("#4D4D4D", "#C2B8C2")

	Gray     = pair("#626262", "#909090")
	MidGray  = pair("#4A4A4A", "#B2B2B2")
	DarkGray = pair("#3C3C3C", "#DDDADA")

	Green        = pair("#04B575", "#04B575")
	SemiDimGreen = pair("#036B46", "#35D79C")

	Fuchsia     = pair("#EE6FF8", "#EE6FF8")
	DullFuchsia = pair("#AD58B4", "#F793FF")

	Indigo       = pair("#7571F9", "#5A56E0")
	SubtleIndigo = pair("#514DC1", "#7D79F6")

	Yellow = pair("#ECFD65", "#9BA92F")
	Red    = pair("#ED567A", "#FF4672")

	// instagram color palette
	// https://www.color-hex.com/color-palette/44340
	InstaYellow  = lipgloss.Color("#feda75")
	InstaOrange  = lipgloss.Color("#fa7e1e")
	InstaMagenta = lipgloss.Color("#d62976")
	InstaPurple  = lipgloss.Color("#962fbf")
	InstaBlue    = lipgloss.Color("#4f5bd5")

	NormalFg      = NewFgStyle(Normal)
	DimNormalFg   = NewFgStyle(DimNormal)
	BrightGrayFg  = NewFgStyle(BrightGray)
	GrayFg        = NewFgStyle(Gray)
	GreenFg       = NewFgStyle(Green)
	FuchsiaFg     = NewFgStyle(Fuchsia)
	DullFuchsiaFg = NewFgStyle(DullFuchsia)
	IndigoFg      = NewFgStyle(Indigo)
	YellowFg      = NewFgStyle(Yellow)
	RedFg         = NewFgStyle(Red)
)

// NewStyle returns a render func with foreground and background colors.
func NewStyle(fg, bg lipgloss.TerminalColor, bold bool) StyleFunc {
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Bold(bold).Render
}

// NewFgStyle returns a render func with a foreground color only.
func NewFgStyle(c lipgloss.TerminalColor) StyleFunc {
	return lipgloss.NewStyle().Foreground(c).Render
}
