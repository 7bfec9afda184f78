// Package panel attaches the debias core to a host node: it fuses raw
// toggle/number pairs into composite rows, installs presets, sanitizes
// restored state, ingests analysis outputs and keeps the preset choice
// from being persisted.
package panel

import (
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// Widget naming on the host side.
const (
	StrengthSuffix = "_str"
	PresetWidget   = "preset"
	OutputField    = "analysis_json"
)

// DefaultMinWidth is the minimum node width enforced on first setup.
const DefaultMinWidth = 96

// State is the panel lifecycle.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "uninitialized"
}

// RowFactory builds the composite face for one bound block.
type RowFactory func(p *Panel, b *engine.Binding, native *host.Widget) host.Drawer

// Options configures Attach.
type Options struct {
	Instance *taxonomy.Instance
	Presets  *engine.Registry // defaults to engine.Presets(Instance)
	MinWidth float64          // defaults to DefaultMinWidth
	NewRow   RowFactory       // nil leaves native widgets in place
	Logger   *zap.Logger
}

// Panel is the core side of one host node.
type Panel struct {
	inst     *taxonomy.Instance
	presets  *engine.Registry
	minWidth float64
	newRow   RowFactory
	log      *zap.Logger

	node     *host.Node
	state    State
	bindings *engine.Bindings
	overlay  *engine.Overlay
	skipped  []string
}

// Attach registers the panel's handlers on node. Host handlers keep
// running first; the panel's run after them. If the node already signalled
// readiness, setup runs immediately.
func Attach(node *host.Node, opts Options) *Panel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	p := &Panel{
		inst:     opts.Instance,
		presets:  opts.Presets,
		minWidth: opts.MinWidth,
		newRow:   opts.NewRow,
		log:      log.With(zap.String("instance", opts.Instance.Name), zap.String("node", node.ID)),
		node:     node,
		bindings: engine.NewBindings(),
		overlay:  engine.NewOverlay(log),
	}
	if p.presets == nil {
		p.presets = engine.Presets(opts.Instance)
	}
	if p.minWidth <= 0 {
		p.minWidth = DefaultMinWidth
	}
	node.Extend(host.Hooks{
		Created:   func(*host.Node) { p.Setup() },
		Configure: func(_ *host.Node, st host.NodeState) { p.onConfigure(st) },
		Executed:  func(_ *host.Node, out map[string]any) { p.onExecuted(out) },
		Serialize: func(_ *host.Node, st *host.NodeState) { p.onSerialize(st) },
	})
	if node.IsPopulated() {
		p.Setup()
	}
	return p
}

// NodeDef declares the raw controls the host must create for inst: one
// toggle and one number per block plus the shared preset combo.
func NodeDef(inst *taxonomy.Instance, presets *engine.Registry) host.NodeDef {
	def := host.NodeDef{Type: "Debias/" + inst.Name, Title: inst.Title}
	if presets == nil {
		presets = engine.Presets(inst)
	}
	def.Inputs = append(def.Inputs, host.InputDef{
		Name: PresetWidget, Kind: host.KindCombo, Default: model.CustomPreset, Options: presets.Names(),
	})
	if inst.ReadOnly {
		return def
	}
	for _, id := range inst.Taxonomy.IDs() {
		def.Inputs = append(def.Inputs,
			host.InputDef{Name: id, Kind: host.KindToggle, Default: true},
			host.InputDef{Name: id + StrengthSuffix, Kind: host.KindNumber, Default: model.StrengthNeutral},
		)
	}
	return def
}

// Setup fuses widgets, installs presets and enforces the minimum width.
// It runs once; later calls are no-ops.
func (p *Panel) Setup() {
	if p.state == Ready {
		return
	}
	q := p.inst.Quantizer()
	for _, id := range p.inst.Taxonomy.IDs() {
		tog := p.node.Widget(id)
		if tog == nil || tog.Kind != host.KindToggle {
			p.skipped = append(p.skipped, id)
			continue
		}
		b := &engine.Binding{ID: id, Toggle: tog, Quant: q}
		if num := p.node.Widget(id + StrengthSuffix); num != nil && num.Kind == host.KindNumber {
			b.Strength = num
			num.Subsumed = true
		}
		p.bindings.Add(b)
		if p.newRow != nil && !p.inst.ReadOnly {
			tog.Drawer = p.newRow(p, b, tog)
		}
	}
	if len(p.skipped) > 0 {
		p.log.Debug("blocks without a toggle left unfused", zap.Strings("ids", p.skipped))
	}

	if w := p.node.Widget(PresetWidget); w != nil && w.Kind == host.KindCombo {
		w.Options = p.presets.Names()
		w.Value = model.CustomPreset
		w.OnChange = func(w *host.Widget) { _ = p.ApplyPreset(w.String()) }
	}

	if p.node.Size.W < p.minWidth {
		p.node.Size.W = p.minWidth
	}
	p.state = Ready
	p.log.Debug("panel ready", zap.Int("bound", p.bindings.Len()))
	p.node.SetDirty()
}

// ApplyPreset rewrites every bound block from the named preset and
// requests a redraw. Unknown names are logged and ignored.
func (p *Panel) ApplyPreset(name string) error {
	if err := p.presets.Apply(name, p.bindings); err != nil {
		p.log.Debug("preset not applied", zap.String("preset", name), zap.Error(err))
		return err
	}
	p.log.Debug("preset applied", zap.String("preset", name))
	p.node.SetDirty()
	return nil
}

func (p *Panel) onConfigure(st host.NodeState) {
	q := p.inst.Quantizer()
	for _, id := range p.inst.Taxonomy.IDs() {
		if tog := p.node.Widget(id); tog != nil && tog.Kind == host.KindToggle {
			if _, ok := tog.Value.(bool); !ok {
				tog.SetBool(true)
			}
		}
		num := p.node.Widget(id + StrengthSuffix)
		if num == nil || num.Kind != host.KindNumber {
			continue
		}
		v, ok := num.Float()
		if !ok {
			p.log.Debug("non-numeric strength reset", zap.String("id", id), zap.Any("value", num.Value))
			v = model.StrengthNeutral
		}
		num.SetFloat(q.Snap(v))
	}
	if w := p.node.Widget(PresetWidget); w != nil {
		w.Value = model.CustomPreset
	}
	p.node.SetDirty()
}

func (p *Panel) onExecuted(outputs map[string]any) {
	raw, ok := SingleString(outputs, OutputField)
	if !ok {
		return
	}
	if p.overlay.Ingest(raw) {
		p.node.SetDirty()
	}
}

func (p *Panel) onSerialize(st *host.NodeState) {
	if st.Values == nil {
		st.Values = make(map[string]any)
	}
	if _, ok := st.Values[PresetWidget]; ok || p.node.Widget(PresetWidget) != nil {
		st.Values[PresetWidget] = model.CustomPreset
	}
}

// SingleString extracts field from execution outputs when it holds one
// string element. A bare string is accepted too.
func SingleString(outputs map[string]any, field string) (string, bool) {
	v, ok := outputs[field]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		if len(t) == 1 {
			return t[0], true
		}
	case []any:
		if len(t) == 1 {
			s, ok := t[0].(string)
			return s, ok
		}
	}
	return "", false
}

// State returns the lifecycle state.
func (p *Panel) State() State { return p.state }

// Node returns the host node.
func (p *Panel) Node() *host.Node { return p.node }

// Instance returns the panel's instance.
func (p *Panel) Instance() *taxonomy.Instance { return p.inst }

// Bindings returns the bound blocks.
func (p *Panel) Bindings() *engine.Bindings { return p.bindings }

// Overlay returns the analysis overlay.
func (p *Panel) Overlay() *engine.Overlay { return p.overlay }

// Presets returns the preset registry.
func (p *Panel) Presets() *engine.Registry { return p.presets }

// Skipped lists taxonomy ids that had no toggle to fuse.
func (p *Panel) Skipped() []string { return append([]string(nil), p.skipped...) }

// Score returns the overlay impact score for id.
func (p *Panel) Score(id string) (float64, bool) { return p.overlay.Score(id) }

// Logger returns the panel's logger.
func (p *Panel) Logger() *zap.Logger { return p.log }
