package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/biasdeck/engine"
)

// RenderSummary renders the inspector view of an analysis summary:
// per-unit magnitude bars grouped into early / middle / late thirds,
// followed by the top-N ranked blocks with their channel breakdowns.
//
//	╭─ early ──────────────────────────────╮
//	│ layers_0        ████████░░░░░░  0.41 │
//	│ layers_1        ██████████████  0.73 │
//	╰──────────────────────────────────────╯
func RenderSummary(s engine.Summary, width int) string {
	if len(s.Units) == 0 && len(s.Top) == 0 {
		return dimStyle.Render("  waiting for analysis output…")
	}
	innerW := width - 5
	if innerW < 30 {
		innerW = 30
	}

	labelW := 18
	for _, u := range s.Units {
		labelW = max(labelW, lipgloss.Width(u.Unit))
	}
	labelW = min(labelW, innerW/2)
	barW := max(innerW-labelW-8, 4)

	var boxes []string
	for third, name := range engine.ThirdNames {
		b := newPanelBox(name, innerW)
		for _, u := range s.Units {
			if u.Third != third {
				continue
			}
			pct := 0.0
			if s.Max > 0 {
				pct = u.Magnitude / s.Max * 100
			}
			b.add(fitWidth(labelStyle.Render(Elide(u.Unit, labelW)), labelW) + " " +
				impactBar(pct, barW) + " " +
				valueStyle.Render(fmt.Sprintf("%6.2f", u.Magnitude)))
		}
		if len(b.body) > 0 {
			boxes = append(boxes, b.String())
		}
	}

	if len(s.Top) > 0 {
		b := newPanelBox(fmt.Sprintf("top %d", len(s.Top)), innerW)
		for i, r := range s.Top {
			score := lipgloss.NewStyle().Foreground(impactRamp[ImpactBucket(r.Score)]).Render(fmt.Sprintf("%5.1f", r.Score))
			line := dimStyle.Render(fmt.Sprintf("%2d.", i+1)) + " " + score + " " + valueStyle.Render(r.ID)
			if ch := channelText(r.Channels); ch != "" {
				line += "  " + dimStyle.Render(ch)
			}
			b.add(line)
		}
		boxes = append(boxes, b.String())
	}
	return strings.Join(boxes, "\n")
}

// channelText renders channels largest first, ties by name.
func channelText(ch map[string]float64) string {
	if len(ch) == 0 {
		return ""
	}
	names := make([]string, 0, len(ch))
	for k := range ch {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ch[names[i]] != ch[names[j]] {
			return ch[names[i]] > ch[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s %.1f", n, ch[n])
	}
	return strings.Join(parts, " · ")
}
