package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

type stubRow struct{}

func (stubRow) Rows() int                                 { return 1 }
func (stubRow) Render(int) string                         { return "" }
func (stubRow) Pointer(host.PointerEvent, int) bool        { return false }
func stubFactory(*Panel, *engine.Binding, *host.Widget) host.Drawer { return stubRow{} }

func mustInstance(t *testing.T, name, variant string) *taxonomy.Instance {
	t.Helper()
	inst, err := taxonomy.Lookup(name, variant)
	require.NoError(t, err)
	return inst
}

// newPanel adds a node for inst to a fresh graph with the panel attached
// the way the host does it: hooks registered before readiness.
func newPanel(t *testing.T, inst *taxonomy.Instance) (*Panel, *host.Node) {
	t.Helper()
	g := host.NewGraph()
	var p *Panel
	g.OnNodeAdded = func(n *host.Node) {
		p = Attach(n, Options{Instance: inst, NewRow: stubFactory})
	}
	n := g.Add(NodeDef(inst, nil))
	require.NotNil(t, p)
	return p, n
}

func TestSetupFusesOneRowPerBlock(t *testing.T) {
	inst := mustInstance(t, "vae", "")
	p, n := newPanel(t, inst)

	assert.Equal(t, Ready, p.State())
	assert.Equal(t, inst.Taxonomy.Len(), p.Bindings().Len())
	// preset combo + one fused row per block
	assert.Equal(t, 1+inst.Taxonomy.Len(), n.VisibleRows())
	for _, id := range inst.Taxonomy.IDs() {
		assert.True(t, n.Widget(id+StrengthSuffix).Subsumed, id)
		assert.NotNil(t, n.Widget(id).Drawer, id)
	}
	assert.Empty(t, p.Skipped())
}

func TestSetupIdempotentAndMinWidthOnce(t *testing.T) {
	inst := mustInstance(t, "te", "")
	p, n := newPanel(t, inst)
	assert.Equal(t, float64(DefaultMinWidth), n.Size.W)

	n.Size.W = 40
	p.Setup()
	n.Populated()
	assert.Equal(t, float64(40), n.Size.W, "width is only enforced on first setup")
	assert.Equal(t, inst.Taxonomy.Len(), p.Bindings().Len())
	assert.Equal(t, 1+inst.Taxonomy.Len(), n.VisibleRows())
}

func TestAttachAfterReadiness(t *testing.T) {
	inst := mustInstance(t, "vae", "")
	g := host.NewGraph()
	n := g.Add(NodeDef(inst, nil))
	require.True(t, n.IsPopulated())

	p := Attach(n, Options{Instance: inst})
	assert.Equal(t, Ready, p.State())
	assert.Equal(t, inst.Taxonomy.Len(), p.Bindings().Len())
}

func TestPresetComboAppliesAndRedraws(t *testing.T) {
	inst := mustInstance(t, "te", "")
	p, n := newPanel(t, inst)

	before := n.Redraws()
	n.Widget(PresetWidget).Set("All Off")
	assert.Greater(t, n.Redraws(), before)
	for _, blk := range p.Bindings().Snapshot() {
		assert.False(t, blk.Enabled, blk.ID)
	}

	n.Widget(PresetWidget).Set(model.DefaultPreset)
	for _, blk := range p.Bindings().Snapshot() {
		assert.True(t, blk.Enabled, blk.ID)
		assert.Equal(t, 1.0, blk.Strength, blk.ID)
	}
}

func TestUnknownPresetIgnored(t *testing.T) {
	inst := mustInstance(t, "vae", "")
	p, n := newPanel(t, inst)
	b, _ := p.Bindings().Get(inst.Taxonomy.IDs()[0])
	b.SetValue(0.37)

	n.Widget(PresetWidget).Set("No Such Preset")
	assert.Equal(t, 0.37, b.Value())
}

func TestSerializeForcesCustom(t *testing.T) {
	inst := mustInstance(t, "te", "")
	_, n := newPanel(t, inst)
	n.Widget(PresetWidget).Set("Soft Attention")

	st := n.Serialize()
	assert.Equal(t, model.CustomPreset, st.Values[PresetWidget])
	// the live selection is untouched
	assert.Equal(t, "Soft Attention", n.Widget(PresetWidget).String())
}

func TestConfigureSanitizes(t *testing.T) {
	inst := mustInstance(t, "te", "")
	p, n := newPanel(t, inst)

	n.Configure(host.NodeState{Values: map[string]any{
		PresetWidget:                    "Late Layers",
		"layers_0_mlp":                  false,
		"layers_0_mlp" + StrengthSuffix: "abc",
		"layers_1_mlp" + StrengthSuffix: 0.93,
		"layers_2_mlp" + StrengthSuffix: 9.0,
		"layers_3_mlp":                  "yes",
		"layers_3_mlp" + StrengthSuffix: "-0.5",
	}})

	blk := func(id string) model.Block {
		b, ok := p.Bindings().Get(id)
		require.True(t, ok, id)
		return b.Block()
	}
	assert.Equal(t, model.Block{ID: "layers_0_mlp", Enabled: false, Strength: 1.0}, blk("layers_0_mlp"))
	assert.Equal(t, 0.95, blk("layers_1_mlp").Strength)
	assert.Equal(t, 2.0, blk("layers_2_mlp").Strength)
	assert.Equal(t, model.Block{ID: "layers_3_mlp", Enabled: true, Strength: -0.5}, blk("layers_3_mlp"))
	assert.Equal(t, model.CustomPreset, n.Widget(PresetWidget).String())
}

func TestConfigureDoesNotReplayPreset(t *testing.T) {
	inst := mustInstance(t, "te", "")
	p, n := newPanel(t, inst)
	b, _ := p.Bindings().Get("final_norm")
	b.SetValue(-1.5)
	saved := n.Serialize()

	fresh, fn := newPanel(t, inst)
	saved.Values[PresetWidget] = "All Off"
	fn.Configure(saved)

	got, _ := fresh.Bindings().Get("final_norm")
	assert.Equal(t, -1.5, got.Value())
	assert.True(t, got.Enabled())
}

func TestExecutedIngestsAnalysis(t *testing.T) {
	inst := mustInstance(t, "dit", taxonomy.VariantKlein4B)
	p, n := newPanel(t, inst)

	before := n.Redraws()
	n.Executed(map[string]any{OutputField: []any{`{"blocks":{"img_in":{"score":30}}}`}})
	assert.Greater(t, n.Redraws(), before)
	s, ok := p.Score("img_in")
	require.True(t, ok)
	assert.Equal(t, 30.0, s)

	for _, bad := range []map[string]any{
		{OutputField: []any{"not json"}},
		{OutputField: []any{"a", "b"}},
		{OutputField: 42},
		{"other": []any{`{"blocks":{}}`}},
	} {
		n.Executed(bad)
		s, ok = p.Score("img_in")
		assert.True(t, ok)
		assert.Equal(t, 30.0, s)
	}
}

func TestSingleString(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"bare", "x", "x", true},
		{"strings", []string{"x"}, "x", true},
		{"any", []any{"x"}, "x", true},
		{"two", []any{"x", "y"}, "", false},
		{"non-string", []any{1}, "", false},
		{"empty", []string{}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SingleString(map[string]any{"f": tc.in}, "f")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHostHooksRunFirst(t *testing.T) {
	inst := mustInstance(t, "vae", "")
	var order []string
	g := host.NewGraph()
	g.OnNodeAdded = func(n *host.Node) {
		n.SetHostHooks(host.Hooks{
			Created:   func(*host.Node) { order = append(order, "host-created") },
			Serialize: func(_ *host.Node, st *host.NodeState) { st.Values[PresetWidget] = "host" },
		})
		Attach(n, Options{Instance: inst})
		n.Extend(host.Hooks{Created: func(*host.Node) { order = append(order, "late-created") }})
	}
	n := g.Add(NodeDef(inst, nil))

	assert.Equal(t, []string{"host-created", "late-created"}, order)
	assert.Equal(t, model.CustomPreset, n.Serialize().Values[PresetWidget])
}

func TestUnpairedWidgets(t *testing.T) {
	inst := mustInstance(t, "vae", "")
	ids := inst.Taxonomy.IDs()
	n := host.NewNode("n1", "Debias/vae", "VAE")
	n.AddWidget(PresetWidget, host.KindCombo, model.CustomPreset)
	// first id: toggle only; second id: number only; rest paired
	n.AddWidget(ids[0], host.KindToggle, true)
	n.AddWidget(ids[1]+StrengthSuffix, host.KindNumber, 1.0)
	for _, id := range ids[2:] {
		n.AddWidget(id, host.KindToggle, true)
		n.AddWidget(id+StrengthSuffix, host.KindNumber, 1.0)
	}
	p := Attach(n, Options{Instance: inst, NewRow: stubFactory})
	n.Populated()

	assert.Equal(t, []string{ids[1]}, p.Skipped())
	b, ok := p.Bindings().Get(ids[0])
	require.True(t, ok)
	assert.False(t, b.HasStrength())
	assert.False(t, n.Widget(ids[1]+StrengthSuffix).Subsumed)

	require.NoError(t, p.ApplyPreset("All Off"))
	assert.False(t, b.Enabled(), "toggle-only blocks follow the preset's enabled rule")
	paired, ok := p.Bindings().Get(ids[2])
	require.True(t, ok)
	assert.False(t, paired.Enabled())

	require.NoError(t, p.ApplyPreset("Default"))
	assert.True(t, b.Enabled())
	assert.False(t, b.HasStrength())
}

func TestReadOnlyInstanceHasNoRows(t *testing.T) {
	inst := mustInstance(t, "te-inspect", "")
	p, n := newPanel(t, inst)
	assert.Equal(t, Ready, p.State())
	assert.Equal(t, 0, p.Bindings().Len())
	assert.Len(t, p.Skipped(), inst.Taxonomy.Len())
	assert.Equal(t, 1, n.VisibleRows())
}
