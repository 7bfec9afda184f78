package model

// CustomPreset is the sentinel preset name. It is the only preset value
// that is ever persisted.
const CustomPreset = "Custom"

// DefaultPreset enables every block at neutral strength.
const DefaultPreset = "Default"

// Override replaces the default strength for one block. When Enabled is
// nil the enabled flag follows the preset's default-enabled rule.
type Override struct {
	Strength float64 `json:"strength" yaml:"strength"`
	Enabled  *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// PresetSpec is a total rewrite rule for every block of a taxonomy.
type PresetSpec struct {
	// EnableAll corresponds to defaultEnabled == "ALL". When false only
	// ids in Enabled start enabled.
	EnableAll       bool                `json:"enable_all" yaml:"enable_all"`
	Enabled         map[string]bool     `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	DefaultStrength float64             `json:"default_strength" yaml:"default_strength"`
	Overrides       map[string]Override `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Resolve computes the enabled flag and strength a preset assigns to id.
func (p *PresetSpec) Resolve(id string) (enabled bool, strength float64) {
	enabled = p.EnableAll || p.Enabled[id]
	strength = p.DefaultStrength
	if o, ok := p.Overrides[id]; ok {
		strength = o.Strength
		if o.Enabled != nil {
			enabled = *o.Enabled
		}
	}
	return enabled, strength
}

// Bool returns a pointer to b, for Override.Enabled literals.
func Bool(b bool) *bool { return &b }
