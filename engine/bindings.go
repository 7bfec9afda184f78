// Package engine holds the panel-independent core: block bindings, the
// preset engine, the analysis overlay and its aggregate summary.
package engine

import "github.com/ftahirops/biasdeck/model"

// Toggle is the boolean half of a block's raw controls.
type Toggle interface {
	Bool() bool
	SetBool(bool)
}

// Strength is the numeric half of a block's raw controls.
type Strength interface {
	Float() (float64, bool)
	SetFloat(float64)
}

// Binding ties one block id to its raw controls. Strength is nil for
// boolean-only blocks.
type Binding struct {
	ID       string
	Toggle   Toggle
	Strength Strength
	Quant    model.Quantizer
}

// Enabled reads the enabled flag.
func (b *Binding) Enabled() bool { return b.Toggle.Bool() }

// SetEnabled writes the enabled flag. Strength is untouched.
func (b *Binding) SetEnabled(v bool) { b.Toggle.SetBool(v) }

// HasStrength reports whether the block has a paired numeric control.
func (b *Binding) HasStrength() bool { return b.Strength != nil }

// Value reads the strength, snapped. Missing or non-numeric values read
// as the neutral strength.
func (b *Binding) Value() float64 {
	if b.Strength == nil {
		return model.StrengthNeutral
	}
	v, ok := b.Strength.Float()
	if !ok {
		return model.StrengthNeutral
	}
	return b.Quant.Snap(v)
}

// SetValue clamps and snaps v, stores it, and returns the stored value.
func (b *Binding) SetValue(v float64) float64 {
	if b.Strength == nil {
		return model.StrengthNeutral
	}
	s := b.Quant.Snap(v)
	b.Strength.SetFloat(s)
	return s
}

// Nudge moves the strength by steps quantization steps.
func (b *Binding) Nudge(steps int) float64 {
	return b.SetValue(b.Value() + float64(steps)*b.Quant.Step)
}

// Block returns a snapshot of the bound block.
func (b *Binding) Block() model.Block {
	return model.Block{ID: b.ID, Enabled: b.Enabled(), Strength: b.Value()}
}

// Bindings is the ordered set of bound blocks of one panel.
type Bindings struct {
	order []*Binding
	byID  map[string]*Binding
}

// NewBindings returns an empty set.
func NewBindings() *Bindings {
	return &Bindings{byID: make(map[string]*Binding)}
}

// Add appends b. A second binding for the same id is ignored.
func (bs *Bindings) Add(b *Binding) {
	if _, dup := bs.byID[b.ID]; dup {
		return
	}
	bs.order = append(bs.order, b)
	bs.byID[b.ID] = b
}

// Get returns the binding for id.
func (bs *Bindings) Get(id string) (*Binding, bool) {
	b, ok := bs.byID[id]
	return b, ok
}

// All returns bindings in presentation order.
func (bs *Bindings) All() []*Binding {
	out := make([]*Binding, len(bs.order))
	copy(out, bs.order)
	return out
}

// Len returns the number of bound blocks.
func (bs *Bindings) Len() int { return len(bs.order) }

// Snapshot returns every bound block's current state.
func (bs *Bindings) Snapshot() []model.Block {
	out := make([]model.Block, len(bs.order))
	for i, b := range bs.order {
		out[i] = b.Block()
	}
	return out
}
