package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// fitWidth pads s with spaces to w display cells, ANSI sequences excluded.
// Longer strings are returned unchanged.
func fitWidth(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// panelBox collects lines for a rounded frame. The frame is indented one
// cell and is inner+4 cells wide plus the indent.
//
//	╭─ title ────╮
//	│ content    │
//	╰────────────╯
type panelBox struct {
	title string
	inner int
	body  []string
}

func newPanelBox(title string, inner int) *panelBox {
	return &panelBox{title: title, inner: inner}
}

// add appends one content line, clipped to the inner width.
func (b *panelBox) add(line string) {
	if lipgloss.Width(line) > b.inner {
		line = lipgloss.NewStyle().MaxWidth(b.inner).Render(line)
	}
	b.body = append(b.body, line)
}

func (b *panelBox) String() string {
	edge := b.inner + 2
	var sb strings.Builder

	sb.WriteString(" ")
	if b.title == "" {
		sb.WriteString(dimStyle.Render("╭" + strings.Repeat("─", edge) + "╮"))
	} else {
		label := " " + b.title + " "
		fill := max(edge-1-lipgloss.Width(label), 0)
		sb.WriteString(dimStyle.Render("╭─") + headerStyle.Render(label) +
			dimStyle.Render(strings.Repeat("─", fill)+"╮"))
	}
	sb.WriteString("\n")

	side := dimStyle.Render("│")
	for _, line := range b.body {
		sb.WriteString(" " + side + " " + fitWidth(line, b.inner) + " " + side + "\n")
	}

	sb.WriteString(" " + dimStyle.Render("╰"+strings.Repeat("─", edge)+"╯"))
	return sb.String()
}

// impactBar draws a bar of width cells, pct in [0,100] of it filled in
// the impact ramp color for pct.
func impactBar(pct float64, width int) string {
	width = max(width, 1)
	pct = min(max(pct, 0), 100)
	filled := min(int(pct/100*float64(width)), width)
	fill := lipgloss.NewStyle().Foreground(impactRamp[ImpactBucket(pct)])
	return fill.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}
