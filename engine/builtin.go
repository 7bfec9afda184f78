package engine

import (
	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// InThird matches repeated entries whose index falls in the given third
// (0 early, 1 middle, 2 late) of their group.
func InThird(tax *taxonomy.Taxonomy, third int) Match {
	sizes := make(map[string]int)
	for _, e := range tax.Entries() {
		if e.Index >= 0 {
			if _, ok := sizes[e.Group]; !ok {
				sizes[e.Group] = tax.GroupSize(e.Group)
			}
		}
	}
	return func(e taxonomy.Entry, _ taxonomy.Category) bool {
		if e.Index < 0 {
			return false
		}
		return taxonomy.Third(e.Index, sizes[e.Group]) == third
	}
}

// Presets returns the built-in preset registry for an instance. Every
// registry starts with Custom (no-op) and Default (all enabled at 1.0).
func Presets(inst *taxonomy.Instance) *Registry {
	r := NewRegistry()
	r.Register(model.DefaultPreset, NewPreset(inst, model.StrengthNeutral).Build())
	if inst.ReadOnly {
		return r
	}

	tax := inst.Taxonomy
	r.Register("Soft Attention", NewPreset(inst, model.StrengthNeutral).
		Strength(InCategory(taxonomy.CategoryAttention), 0.9).
		Build())
	r.Register("Attention Only", NewPreset(inst, model.StrengthNeutral).
		EnableOnly(InCategory(taxonomy.CategoryAttention)).
		Build())
	r.Register("Late Layers", NewPreset(inst, model.StrengthNeutral).
		EnableOnly(InThird(tax, 2)).
		Strength(InThird(tax, 2), 1.1).
		Build())
	r.Register("Early Damp", NewPreset(inst, model.StrengthNeutral).
		Strength(InThird(tax, 0), 0.8).
		Set(Both(InThird(tax, 0), InCategory(taxonomy.CategoryNormalization)), false, 0).
		Build())
	r.Register("Invert Globals", NewPreset(inst, model.StrengthNeutral).
		Strength(InCategory(taxonomy.CategoryGlobal), -1.0).
		Build())
	r.Register("All Off", NewPreset(inst, model.StrengthNeutral).
		EnableOnly(func(taxonomy.Entry, taxonomy.Category) bool { return false }).
		Build())

	switch inst.Name {
	case "dit":
		r.Register("Boost MLP", NewPreset(inst, model.StrengthNeutral).
			Strength(InCategory(taxonomy.CategoryMLP), 1.25).
			Build())
	case "vae":
		r.Register("Decoder Only", NewPreset(inst, model.StrengthNeutral).
			EnableOnly(Any(InGroup("decoder"), InGroup("dec_mid"), InGroup("dec_up"))).
			Build())
		r.Register("Gentle Sampling", NewPreset(inst, model.StrengthNeutral).
			Strength(InCategory(taxonomy.CategorySampling), 0.97).
			Build())
	}
	return r
}
