package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/panel"
)

// Row geometry, in cells.
const (
	rowMargin     = 1
	toggleSide    = 3
	rowGap        = 1
	valueWidth    = 6
	dragTolerance = 2
	minLabelRunes = 4

	DefaultLabelWidth = 22
)

// Rect is a horizontal span of a row.
type Rect struct {
	X float64
	W float64
}

// End is the first cell past the span.
func (r Rect) End() float64 { return r.X + r.W }

// Contains reports whether x falls inside the span.
func (r Rect) Contains(x float64) bool { return x >= r.X && x < r.End() }

// RowLayout splits one row into its regions.
type RowLayout struct {
	Toggle Rect
	Label  Rect
	Track  Rect
	Value  Rect
}

// ComputeLayout lays out a row of the given width: margin, toggle box,
// label, slider track and a right-aligned value readout. The track takes
// whatever is left and never goes negative. The label column is never
// narrower than an elided label (minLabelRunes plus the ellipsis).
func ComputeLayout(width, labelWidth float64) RowLayout {
	var l RowLayout
	l.Toggle = Rect{X: rowMargin, W: toggleSide}
	l.Label = Rect{X: l.Toggle.End() + rowGap, W: math.Max(labelWidth, minLabelRunes+1)}
	trackX := l.Label.End() + rowGap
	l.Value = Rect{X: width - rowMargin - valueWidth, W: valueWidth}
	l.Track = Rect{X: trackX, W: math.Max(0, l.Value.X-rowGap-trackX)}
	return l
}

// Elide shortens s to fit width cells, appending an ellipsis. It never
// cuts below minLabelRunes runes.
func Elide(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > minLabelRunes && runewidth.StringWidth(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// Composite is the fused face of one block: toggle, label and slider on
// a single row. It reads and writes through the block's binding, so the
// raw host widgets stay the storage.
type Composite struct {
	binding  *engine.Binding
	native   *host.Widget
	resolver Resolver
	score    func(id string) (float64, bool)
	redraw   func()

	LabelWidth int
	Selected   bool

	dragging bool
}

// NewComposite builds a row for b over the native toggle widget.
func NewComposite(b *engine.Binding, native *host.Widget, r Resolver, score func(string) (float64, bool), redraw func()) *Composite {
	if score == nil {
		score = func(string) (float64, bool) { return 0, false }
	}
	if redraw == nil {
		redraw = func() {}
	}
	return &Composite{
		binding:    b,
		native:     native,
		resolver:   r,
		score:      score,
		redraw:     redraw,
		LabelWidth: DefaultLabelWidth,
	}
}

// RowFactory returns a panel.RowFactory producing composites with the
// given label width.
func RowFactory(labelWidth int) panel.RowFactory {
	return func(p *panel.Panel, b *engine.Binding, native *host.Widget) host.Drawer {
		c := NewComposite(b, native, NewResolver(p.Instance()), p.Score, p.Node().SetDirty)
		if labelWidth > 0 {
			c.LabelWidth = labelWidth
		}
		return c
	}
}

// Binding returns the block this row edits.
func (c *Composite) Binding() *engine.Binding { return c.binding }

// Rows is always one: the toggle and slider share a line.
func (c *Composite) Rows() int { return 1 }

// Layout returns the row regions for width.
func (c *Composite) Layout(width int) RowLayout {
	return ComputeLayout(float64(width), float64(c.LabelWidth))
}

// Dragging reports whether a slider drag is in progress.
func (c *Composite) Dragging() bool { return c.dragging }

// Nudge moves the strength by steps quantization steps.
func (c *Composite) Nudge(steps int) {
	if !c.binding.HasStrength() {
		return
	}
	c.binding.Nudge(steps)
	c.redraw()
}

// trackValue maps x to a strength when it lies on the track or within
// the drag tolerance of it.
func (c *Composite) trackValue(x float64, l RowLayout) (float64, bool) {
	if !c.binding.HasStrength() || l.Track.W <= 0 {
		return 0, false
	}
	if x < l.Track.X-dragTolerance || x > l.Track.End()+dragTolerance {
		return 0, false
	}
	norm := (x - l.Track.X) / l.Track.W
	norm = math.Max(0, math.Min(1, norm))
	return model.StrengthMin + norm*(model.StrengthMax-model.StrengthMin), true
}

// Pointer handles slider drags and hands everything else to the native
// toggle. Strength is editable while the block is disabled.
func (c *Composite) Pointer(ev host.PointerEvent, width int) bool {
	l := c.Layout(width)
	switch ev.Kind {
	case host.PointerDown:
		if v, ok := c.trackValue(ev.X, l); ok {
			c.dragging = true
			c.binding.SetValue(v)
			c.redraw()
			return true
		}
	case host.PointerMove:
		if c.dragging {
			if v, ok := c.trackValue(ev.X, l); ok {
				c.binding.SetValue(v)
				c.redraw()
				return true
			}
		}
	case host.PointerUp:
		if c.dragging {
			c.dragging = false
			return true
		}
	}
	if c.native == nil {
		return false
	}
	return c.native.DefaultPointer(ev)
}

// Render draws the row at exactly width cells.
func (c *Composite) Render(width int) string {
	l := c.Layout(width)
	id := c.binding.ID
	enabled := c.binding.Enabled()
	score, has := c.score(id)
	st := c.resolver.Resolve(id, enabled, score, has)

	bg := lipgloss.NewStyle().Background(st.Row)
	fg := func(col lipgloss.Color) lipgloss.Style {
		if !enabled {
			return bg.Foreground(colorMuted)
		}
		return bg.Foreground(col)
	}

	var sb strings.Builder
	margin := " "
	if c.Selected {
		margin = "▸"
	}
	sb.WriteString(fg(colorWhite).Render(margin))

	box := "[ ]"
	if enabled {
		box = "[x]"
	}
	sb.WriteString(fg(st.Accent).Bold(enabled).Render(box))
	sb.WriteString(bg.Render(strings.Repeat(" ", rowGap)))

	label := Elide(id, int(l.Label.W))
	sb.WriteString(fg(colorWhite).Render(padCells(label, int(l.Label.W))))
	sb.WriteString(bg.Render(strings.Repeat(" ", rowGap)))

	sb.WriteString(c.renderTrack(int(l.Track.W), st, enabled, bg))
	sb.WriteString(bg.Render(strings.Repeat(" ", rowGap)))

	val := "  —"
	if c.binding.HasStrength() {
		val = fmt.Sprintf("%.2f", c.binding.Value())
	}
	sb.WriteString(fg(colorWhite).Render(fmt.Sprintf("%*s", valueWidth, val)))
	sb.WriteString(bg.Render(strings.Repeat(" ", rowMargin)))
	return sb.String()
}

// trackCells places value v on a track of w cells. lo..hi is the filled
// span between the zero mark and the thumb, both ends included.
func trackCells(w int, v float64) (zero, thumb, lo, hi int) {
	cell := func(x float64) int {
		i := int((x - model.StrengthMin) / (model.StrengthMax - model.StrengthMin) * float64(w))
		return min(max(i, 0), w-1)
	}
	zero, thumb = cell(0), cell(v)
	lo, hi = min(zero, thumb), max(zero, thumb)
	return zero, thumb, lo, hi
}

// trackColors picks rail, fill and thumb colors. Negative values fill in
// colorBelowZero; disabled rows draw everything muted.
func trackColors(accent lipgloss.Color, enabled bool, v float64) (rail, fill, knob lipgloss.Color) {
	if !enabled {
		return colorMuted, colorMuted, colorMuted
	}
	fill = accent
	if v < 0 {
		fill = colorBelowZero
	}
	return colorGray, fill, colorWhite
}

func (c *Composite) renderTrack(w int, st Style, enabled bool, bg lipgloss.Style) string {
	if w <= 0 {
		return ""
	}
	if !c.binding.HasStrength() {
		return bg.Render(strings.Repeat(" ", w))
	}
	v := c.binding.Value()
	zero, thumb, lo, hi := trackCells(w, v)
	railC, fillC, knobC := trackColors(st.Accent, enabled, v)
	rail := bg.Foreground(railC)
	bar := bg.Foreground(fillC)
	knob := bg.Foreground(knobC).Bold(enabled)

	var sb strings.Builder
	for i := 0; i < w; i++ {
		switch {
		case i == thumb:
			sb.WriteString(knob.Render("●"))
		case i == zero:
			sb.WriteString(rail.Render("┼"))
		case i >= lo && i <= hi:
			sb.WriteString(bar.Render("━"))
		default:
			sb.WriteString(rail.Render("─"))
		}
	}
	return sb.String()
}

// padCells pads s with spaces to exactly w display cells.
func padCells(s string, w int) string {
	if n := runewidth.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
