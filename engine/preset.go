package engine

import (
	"errors"
	"fmt"

	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// ErrUnknownPreset is returned by Apply for names not in the registry.
var ErrUnknownPreset = errors.New("unknown preset")

// Registry maps preset names to specs in registration order. A nil spec
// is the no-op sentinel.
type Registry struct {
	names []string
	specs map[string]*model.PresetSpec
}

// NewRegistry returns a registry holding only the Custom sentinel.
func NewRegistry() *Registry {
	r := &Registry{specs: make(map[string]*model.PresetSpec)}
	r.Register(model.CustomPreset, nil)
	return r
}

// Register adds or replaces a preset.
func (r *Registry) Register(name string, spec *model.PresetSpec) {
	if _, ok := r.specs[name]; !ok {
		r.names = append(r.names, name)
	}
	r.specs[name] = spec
}

// Names returns preset names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the spec for name. ok is false for unknown names; a
// known sentinel returns (nil, true).
func (r *Registry) Lookup(name string) (*model.PresetSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Apply rewrites every binding from the named preset. Ids without an
// override get the preset defaults, so nothing keeps a stale value. The
// sentinel is a no-op. Boolean-only bindings take the enabled state and
// have no strength to write.
func (r *Registry) Apply(name string, bs *Bindings) error {
	spec, ok := r.specs[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownPreset)
	}
	if spec == nil {
		return nil
	}
	for _, b := range bs.order {
		enabled, strength := spec.Resolve(b.ID)
		b.SetEnabled(enabled)
		if b.HasStrength() {
			b.SetValue(strength)
		}
	}
	return nil
}

// Match selects taxonomy entries for a preset rule.
type Match func(e taxonomy.Entry, c taxonomy.Category) bool

// InCategory matches any of cats.
func InCategory(cats ...taxonomy.Category) Match {
	return func(_ taxonomy.Entry, c taxonomy.Category) bool {
		for _, want := range cats {
			if c == want {
				return true
			}
		}
		return false
	}
}

// InGroup matches entries generated by the group with prefix.
func InGroup(prefix string) Match {
	return func(e taxonomy.Entry, _ taxonomy.Category) bool { return e.Group == prefix }
}

// IDs matches the listed ids.
func IDs(ids ...string) Match {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(e taxonomy.Entry, _ taxonomy.Category) bool { return set[e.ID] }
}

// Both matches entries matched by a and b.
func Both(a, b Match) Match {
	return func(e taxonomy.Entry, c taxonomy.Category) bool { return a(e, c) && b(e, c) }
}

// Any matches entries matched by at least one of ms.
func Any(ms ...Match) Match {
	return func(e taxonomy.Entry, c taxonomy.Category) bool {
		for _, m := range ms {
			if m(e, c) {
				return true
			}
		}
		return false
	}
}

// Builder assembles a PresetSpec from declarative rules. Rules are
// evaluated once, in Build, against the whole taxonomy.
type Builder struct {
	inst  *taxonomy.Instance
	spec  model.PresetSpec
	rules []func(e taxonomy.Entry, c taxonomy.Category)
}

// NewPreset starts a preset that enables every block at strength.
func NewPreset(inst *taxonomy.Instance, strength float64) *Builder {
	return &Builder{inst: inst, spec: model.PresetSpec{EnableAll: true, DefaultStrength: strength}}
}

// EnableOnly switches the default-enabled rule from ALL to the set of
// entries matched by m.
func (b *Builder) EnableOnly(m Match) *Builder {
	b.spec.EnableAll = false
	b.rules = append(b.rules, func(e taxonomy.Entry, c taxonomy.Category) {
		if m(e, c) {
			if b.spec.Enabled == nil {
				b.spec.Enabled = make(map[string]bool)
			}
			b.spec.Enabled[e.ID] = true
		}
	})
	return b
}

// Strength overrides the strength of matched entries.
func (b *Builder) Strength(m Match, strength float64) *Builder {
	return b.override(m, model.Override{Strength: strength})
}

// Set overrides both enabled flag and strength of matched entries.
func (b *Builder) Set(m Match, enabled bool, strength float64) *Builder {
	return b.override(m, model.Override{Strength: strength, Enabled: model.Bool(enabled)})
}

func (b *Builder) override(m Match, o model.Override) *Builder {
	b.rules = append(b.rules, func(e taxonomy.Entry, c taxonomy.Category) {
		if m(e, c) {
			if b.spec.Overrides == nil {
				b.spec.Overrides = make(map[string]model.Override)
			}
			b.spec.Overrides[e.ID] = o
		}
	})
	return b
}

// Build evaluates the rules and returns the spec. Later rules win.
func (b *Builder) Build() *model.PresetSpec {
	if !b.spec.EnableAll && b.spec.Enabled == nil {
		b.spec.Enabled = make(map[string]bool)
	}
	for _, e := range b.inst.Taxonomy.Entries() {
		c := b.inst.Category(e.ID)
		for _, rule := range b.rules {
			rule(e, c)
		}
	}
	spec := b.spec
	return &spec
}
