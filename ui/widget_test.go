package ui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/panel"
	"github.com/ftahirops/biasdeck/taxonomy"
)

const testWidth = 96

// With M=1 C=3 G=1 L=22 V=6 and W=96 the track spans [28, 88).
const (
	trackStart = 28.0
	trackEnd   = 88.0
	trackMid   = 58.0
)

func newTestPanel(t *testing.T, name, variant string) (*panel.Panel, *host.Node) {
	t.Helper()
	inst, err := taxonomy.Lookup(name, variant)
	if err != nil {
		t.Fatal(err)
	}
	g := host.NewGraph()
	var p *panel.Panel
	g.OnNodeAdded = func(n *host.Node) {
		p = panel.Attach(n, panel.Options{Instance: inst, NewRow: RowFactory(DefaultLabelWidth)})
	}
	n := g.Add(panel.NodeDef(inst, nil))
	return p, n
}

func rowFor(t *testing.T, n *host.Node, id string) *Composite {
	t.Helper()
	w := n.Widget(id)
	if w == nil {
		t.Fatalf("no widget %q", id)
	}
	c, ok := w.Drawer.(*Composite)
	if !ok {
		t.Fatalf("widget %q has no composite drawer", id)
	}
	return c
}

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(testWidth, DefaultLabelWidth)
	if l.Toggle.X != 1 || l.Toggle.W != 3 {
		t.Errorf("toggle = %+v", l.Toggle)
	}
	if l.Label.X != 5 || l.Label.W != 22 {
		t.Errorf("label = %+v", l.Label)
	}
	if l.Track.X != trackStart || l.Track.End() != trackEnd {
		t.Errorf("track = %+v", l.Track)
	}
	if l.Value.X != 89 || l.Value.End() != testWidth-rowMargin {
		t.Errorf("value = %+v", l.Value)
	}

	narrow := ComputeLayout(20, DefaultLabelWidth)
	if narrow.Track.W != 0 {
		t.Errorf("narrow track width = %v, want 0", narrow.Track.W)
	}
}

func TestMidpointDragIsZero(t *testing.T) {
	p, n := newTestPanel(t, "te", "")
	c := rowFor(t, n, "layers_0_mlp")
	before := n.Redraws()

	if !c.Pointer(host.PointerEvent{Kind: host.PointerDown, X: trackMid}, testWidth) {
		t.Fatal("down on track not handled")
	}
	b, _ := p.Bindings().Get("layers_0_mlp")
	if got := b.Value(); got != 0 {
		t.Errorf("strength = %v, want 0", got)
	}
	if n.Redraws() <= before {
		t.Error("no redraw requested")
	}
	if out := c.Render(testWidth); !strings.Contains(out, "0.00") {
		t.Errorf("render missing 0.00: %q", out)
	}
}

func TestDragSequence(t *testing.T) {
	p, n := newTestPanel(t, "te", "")
	c := rowFor(t, n, "final_norm")
	b, _ := p.Bindings().Get("final_norm")

	// hover motion without a press is not a drag
	c.Pointer(host.PointerEvent{Kind: host.PointerMove, X: trackStart}, testWidth)
	if b.Value() != 1.0 {
		t.Fatalf("hover changed strength to %v", b.Value())
	}

	c.Pointer(host.PointerEvent{Kind: host.PointerDown, X: trackMid}, testWidth)
	if !c.Dragging() {
		t.Fatal("press on track did not start a drag")
	}
	// within tolerance left of the track clamps to the minimum
	c.Pointer(host.PointerEvent{Kind: host.PointerMove, X: trackStart - dragTolerance}, testWidth)
	if b.Value() != -2 {
		t.Errorf("strength = %v, want -2", b.Value())
	}
	c.Pointer(host.PointerEvent{Kind: host.PointerMove, X: trackEnd + 1}, testWidth)
	if b.Value() != 2 {
		t.Errorf("strength = %v, want 2", b.Value())
	}
	if !c.Pointer(host.PointerEvent{Kind: host.PointerUp, X: trackEnd}, testWidth) {
		t.Error("release ending a drag not handled")
	}
	c.Pointer(host.PointerEvent{Kind: host.PointerMove, X: trackMid}, testWidth)
	if b.Value() != 2 {
		t.Errorf("move after release changed strength to %v", b.Value())
	}
}

func TestDragWhileDisabled(t *testing.T) {
	p, n := newTestPanel(t, "vae", "")
	id := p.Instance().Taxonomy.IDs()[0]
	c := rowFor(t, n, id)
	b, _ := p.Bindings().Get(id)
	b.SetEnabled(false)

	c.Pointer(host.PointerEvent{Kind: host.PointerDown, X: trackStart + 15}, testWidth)
	if b.Enabled() {
		t.Error("drag re-enabled the block")
	}
	if got := b.Value(); got != -1 {
		t.Errorf("strength = %v, want -1", got)
	}
}

func TestClickOutsideTrackDelegates(t *testing.T) {
	p, n := newTestPanel(t, "te", "")
	c := rowFor(t, n, "embed_tokens")
	b, _ := p.Bindings().Get("embed_tokens")

	if !c.Pointer(host.PointerEvent{Kind: host.PointerDown, X: 2}, testWidth) {
		t.Fatal("click on toggle box not handled")
	}
	if b.Enabled() {
		t.Error("toggle did not flip")
	}
	if b.Value() != 1.0 {
		t.Errorf("strength changed to %v", b.Value())
	}
	// just past the tolerance is not the slider
	c.Pointer(host.PointerEvent{Kind: host.PointerDown, X: trackStart - dragTolerance - 1}, testWidth)
	if c.Dragging() {
		t.Error("drag started outside tolerance")
	}
	if !b.Enabled() {
		t.Error("second click should flip the toggle back")
	}
}

func TestRenderWidth(t *testing.T) {
	p, n := newTestPanel(t, "dit", taxonomy.VariantKlein9B)
	for _, id := range p.Instance().Taxonomy.IDs()[:12] {
		out := rowFor(t, n, id).Render(testWidth)
		if w := lipgloss.Width(out); w != testWidth {
			t.Errorf("%s: width %d, want %d", id, w, testWidth)
		}
	}
}

func TestElide(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"final_norm", 22, "final_norm"},
		{"layers_12_post_attn_norm", 10, "layers_12…"},
		{"layers_12_post_attn_norm", 3, "laye…"},
		{"abcdef", 6, "abcdef"},
	}
	for _, tt := range tests {
		if got := Elide(tt.in, tt.width); got != tt.want {
			t.Errorf("Elide(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestImpactBucket(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{-5, 0}, {0, 0}, {9.99, 0}, {10, 1}, {30, 3}, {89.9, 8}, {90, 9}, {100, 9}, {150, 9},
	}
	for _, tt := range tests {
		if got := ImpactBucket(tt.score); got != tt.want {
			t.Errorf("ImpactBucket(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	inst, err := taxonomy.Lookup("te", "")
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(inst)

	st := r.Resolve("layers_3_self_attn", true, 0, false)
	if st.Accent != categoryAccent[taxonomy.CategoryAttention] {
		t.Errorf("accent = %v, want attention color", st.Accent)
	}
	st = r.Resolve("layers_3_self_attn", true, 30, true)
	if st.Accent != impactRamp[3] {
		t.Errorf("accent = %v, want bucket 3", st.Accent)
	}

	// disabled rows share one background whatever the category or score
	for _, id := range []string{"layers_3_self_attn", "layers_3_mlp", "final_norm", "embed_tokens"} {
		for _, score := range []float64{0, 55, 100} {
			if got := r.Resolve(id, false, score, true).Row; got != colorRowDisabled {
				t.Errorf("%s disabled row = %v", id, got)
			}
		}
	}
}

var ansiSeq = regexp.MustCompile("\x1b\\[[0-9;]*m")

// plainCells strips styling and returns one rune per cell.
func plainCells(s string) []rune {
	return []rune(ansiSeq.ReplaceAllString(s, ""))
}

func TestTrackGlyphPositions(t *testing.T) {
	p, n := newTestPanel(t, "te", "")
	c := rowFor(t, n, "layers_0_mlp")
	b, _ := p.Bindings().Get("layers_0_mlp")
	start := int(trackStart)
	trackW := int(trackEnd - trackStart)

	tests := []struct {
		v        float64
		thumb    int
		fillFrom int
		fillTo   int // inclusive, -1 for none
	}{
		{1.0, 45, 31, 44},
		{-1.0, 15, 16, 29},
		{0, 30, 0, -1},
		{2.0, 59, 31, 58},
	}
	for _, tt := range tests {
		b.SetValue(tt.v)
		row := plainCells(c.Render(testWidth))
		if len(row) != testWidth {
			t.Fatalf("v=%v: row has %d cells", tt.v, len(row))
		}
		track := row[start : start+trackW]
		for i, r := range track {
			var want rune
			switch {
			case i == tt.thumb:
				want = '●'
			case i == 30:
				want = '┼'
			case tt.fillTo >= 0 && i >= tt.fillFrom && i <= tt.fillTo:
				want = '━'
			default:
				want = '─'
			}
			if r != want {
				t.Errorf("v=%v cell %d = %q, want %q", tt.v, i, r, want)
			}
		}
	}
}

func TestTrackColors(t *testing.T) {
	accent := categoryAccent[taxonomy.CategoryAttention]

	rail, fill, knob := trackColors(accent, true, 1)
	if fill != accent || rail != colorGray || knob != colorWhite {
		t.Errorf("enabled positive = %v %v %v", rail, fill, knob)
	}
	if _, fill, _ := trackColors(accent, true, -0.5); fill != colorBelowZero {
		t.Errorf("enabled negative fill = %v, want %v", fill, colorBelowZero)
	}
	for _, v := range []float64{-1, 0, 1} {
		rail, fill, knob := trackColors(accent, false, v)
		if rail != colorMuted || fill != colorMuted || knob != colorMuted {
			t.Errorf("disabled v=%v = %v %v %v, want all muted", v, rail, fill, knob)
		}
	}
}

func TestBelowZeroColorIsDistinct(t *testing.T) {
	for _, c := range taxonomy.Categories {
		if categoryAccent[c] == colorBelowZero {
			t.Errorf("category %s accent equals the below-zero fill %v", c, colorBelowZero)
		}
	}
	for i, col := range impactRamp {
		if col == colorBelowZero {
			t.Errorf("impact bucket %d equals the below-zero fill %v", i, colorBelowZero)
		}
	}
}

func TestNarrowLabelColumnKeepsRowWidth(t *testing.T) {
	l := ComputeLayout(testWidth, 2)
	if l.Label.W != minLabelRunes+1 {
		t.Errorf("label width = %v, want %d", l.Label.W, minLabelRunes+1)
	}

	_, n := newTestPanel(t, "te", "")
	c := rowFor(t, n, "layers_12_post_attn_norm")
	c.LabelWidth = 2
	out := c.Render(testWidth)
	if w := lipgloss.Width(out); w != testWidth {
		t.Errorf("width %d, want %d", w, testWidth)
	}
	if !strings.Contains(ansiSeq.ReplaceAllString(out, ""), "laye…") {
		t.Errorf("label not elided to the floor: %q", out)
	}
}
