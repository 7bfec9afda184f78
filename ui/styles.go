package ui

import "github.com/charmbracelet/lipgloss"

// Base palette. Category accents and the impact ramp in resolver.go are
// drawn from it.
var (
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorOrange  = lipgloss.Color("#FFB86C")
	colorPurple  = lipgloss.Color("#BD93F9")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
	colorMuted   = lipgloss.Color("#5A5E72")
	colorPanel   = lipgloss.Color("#44475A")
)

// Slider and row colors that do not depend on category.
var (
	colorBelowZero   = colorRed
	colorRowDisabled = lipgloss.Color("#1E1F29")
)

// Text styles for chrome around the rows.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorMagenta)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle     = dimStyle
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	critStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	orangeStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
)
