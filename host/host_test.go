package host

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookOrderHostThenExtensions(t *testing.T) {
	n := NewNode("n1", "T", "t")
	var order []string
	n.SetHostHooks(Hooks{Created: func(*Node) { order = append(order, "host") }})
	n.Extend(Hooks{Created: func(*Node) { order = append(order, "ext1") }})
	n.Extend(Hooks{Created: func(*Node) { order = append(order, "ext2") }})

	n.Populated()
	n.Populated()

	assert.Equal(t, []string{"host", "ext1", "ext2"}, order)
	assert.True(t, n.IsPopulated())
}

func TestFloatGuardedExtraction(t *testing.T) {
	w := &Widget{Kind: KindNumber}
	cases := []struct {
		v    any
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{2, 2, true},
		{" 0.25 ", 0.25, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
	}
	for _, c := range cases {
		w.Value = c.v
		got, ok := w.Float()
		assert.Equal(t, c.ok, ok, "%v", c.v)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-12)
		}
	}
}

func TestDefaultPointer(t *testing.T) {
	n := NewNode("n", "T", "t")
	tog := n.AddWidget("a", KindToggle, false)
	combo := n.AddWidget("preset", KindCombo, "x")
	combo.Options = []string{"x", "y", "z"}
	num := n.AddWidget("a_str", KindNumber, 1.0)

	assert.True(t, tog.DefaultPointer(PointerEvent{Kind: PointerDown}))
	assert.True(t, tog.Bool())
	assert.False(t, tog.DefaultPointer(PointerEvent{Kind: PointerMove}))
	assert.True(t, tog.Bool())

	var changed []string
	combo.OnChange = func(w *Widget) { changed = append(changed, w.String()) }
	combo.DefaultPointer(PointerEvent{Kind: PointerDown})
	combo.Cycle(-2)
	assert.Equal(t, []string{"y", "z"}, changed)

	assert.False(t, num.DefaultPointer(PointerEvent{Kind: PointerDown}))
	assert.Equal(t, 3, n.Redraws())
}

func TestRowsSubsumedAndDrawer(t *testing.T) {
	n := NewNode("n", "T", "t")
	n.AddWidget("a", KindToggle, true)
	s := n.AddWidget("a_str", KindNumber, 1.0)
	assert.Equal(t, 2, n.VisibleRows())
	s.Subsumed = true
	assert.Equal(t, 1, n.VisibleRows())
}

func TestGraphSaveLoadRoundTrip(t *testing.T) {
	def := NodeDef{Type: "Panel", Title: "p", Inputs: []InputDef{
		{Name: "a", Kind: KindToggle, Default: true},
		{Name: "a_str", Kind: KindNumber, Default: 1.0},
	}}
	g := NewGraph()
	n := g.Add(def)
	require.NotEmpty(t, n.ID)
	n.Widget("a").SetBool(false)
	n.Widget("a_str").SetFloat(0.5)
	n.Size = Size{W: 80, H: 10}

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	g2 := NewGraph()
	var configured int
	g2.OnNodeAdded = func(n *Node) {
		n.Extend(Hooks{Configure: func(*Node, NodeState) { configured++ }})
	}
	n2 := g2.Add(def)
	require.NoError(t, g2.Load(&buf))

	assert.Equal(t, 1, configured)
	assert.False(t, n2.Widget("a").Bool())
	v, ok := n2.Widget("a_str").Float()
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, 80.0, n2.Size.W)
}

func TestGraphLoadRejectsGarbage(t *testing.T) {
	g := NewGraph()
	err := g.Load(bytes.NewBufferString("{not json"))
	assert.Error(t, err)
}
