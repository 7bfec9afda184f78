package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// Style is the resolved look of one block row.
type Style struct {
	Accent lipgloss.Color
	Row    lipgloss.Color
}

var categoryAccent = map[taxonomy.Category]lipgloss.Color{
	taxonomy.CategoryAttention:     colorCyan,
	taxonomy.CategoryMLP:           colorGreen,
	taxonomy.CategoryNormalization: colorYellow,
	taxonomy.CategoryProjection:    colorPurple,
	taxonomy.CategoryGlobal:        colorOrange,
	taxonomy.CategorySampling:      colorMagenta,
	taxonomy.CategoryOther:         colorWhite,
}

var categoryRow = map[taxonomy.Category]lipgloss.Color{
	taxonomy.CategoryAttention:     lipgloss.Color("#1F3340"),
	taxonomy.CategoryMLP:           lipgloss.Color("#1F3A2A"),
	taxonomy.CategoryNormalization: lipgloss.Color("#3A3A24"),
	taxonomy.CategoryProjection:    lipgloss.Color("#2E2840"),
	taxonomy.CategoryGlobal:        lipgloss.Color("#402E20"),
	taxonomy.CategorySampling:      lipgloss.Color("#40243A"),
	taxonomy.CategoryOther:         lipgloss.Color("#2A2C38"),
}

// impactRamp runs from low impact (cool) to high impact (hot).
var impactRamp = [10]lipgloss.Color{
	"#3B4CC0", "#4F6FD8", "#6A8FE8", "#8BAEF0", "#B0C8EE",
	"#E6C3A8", "#F0A37E", "#E8795A", "#D64A3B", "#B40426",
}

// ImpactBucket maps a score to 0..9: score < 10 is bucket 0, < 20 bucket
// 1, ... < 90 bucket 8, anything else bucket 9. A score on a boundary
// belongs to the upper bucket.
func ImpactBucket(score float64) int {
	score = model.ClampScore(score)
	for b := 0; b < 9; b++ {
		if score < float64(10*(b+1)) {
			return b
		}
	}
	return 9
}

// Resolver derives a row's colors from its id and, when present, its
// impact score. It has no state beyond the classifier.
type Resolver struct {
	Classify func(id string) taxonomy.Category
}

// NewResolver uses the instance's naming convention.
func NewResolver(inst *taxonomy.Instance) Resolver {
	return Resolver{Classify: inst.Category}
}

// Resolve returns the accent and row background for a block. A score
// overrides the category accent; a disabled block always gets the flat
// disabled background.
func (r Resolver) Resolve(id string, enabled bool, score float64, hasScore bool) Style {
	cat := taxonomy.CategoryOther
	if r.Classify != nil {
		cat = r.Classify(id)
	}
	st := Style{Accent: categoryAccent[cat], Row: categoryRow[cat]}
	if hasScore {
		st.Accent = impactRamp[ImpactBucket(score)]
	}
	if !enabled {
		st.Row = colorRowDisabled
	}
	return st
}

// CategoryColor returns the accent color of a category.
func CategoryColor(c taxonomy.Category) lipgloss.Color {
	if col, ok := categoryAccent[c]; ok {
		return col
	}
	return colorWhite
}
