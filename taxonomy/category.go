package taxonomy

import "strings"

// Category is the semantic class of a block, derived from its id.
type Category string

const (
	CategoryAttention     Category = "attention"
	CategoryMLP           Category = "mlp"
	CategoryNormalization Category = "normalization"
	CategoryProjection    Category = "projection"
	CategoryGlobal        Category = "global"
	CategorySampling      Category = "sampling"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAttention, CategoryMLP, CategoryNormalization,
	CategoryProjection, CategoryGlobal, CategorySampling, CategoryOther,
}

// MatchKind selects how a Rule pattern is compared with an id.
type MatchKind int

const (
	MatchPrefix MatchKind = iota
	MatchSuffix
	MatchContains
	MatchExact
)

// Rule maps ids matching Pattern to Category.
type Rule struct {
	Kind     MatchKind
	Pattern  string
	Category Category
}

func (r Rule) matches(id string) bool {
	switch r.Kind {
	case MatchPrefix:
		return strings.HasPrefix(id, r.Pattern)
	case MatchSuffix:
		return strings.HasSuffix(id, r.Pattern)
	case MatchContains:
		return strings.Contains(id, r.Pattern)
	case MatchExact:
		return id == r.Pattern
	}
	return false
}

// Classifier applies an ordered rule list; the first match wins.
type Classifier struct {
	Rules []Rule
}

// Classify returns the category of id, CategoryOther when nothing matches.
func (c Classifier) Classify(id string) Category {
	for _, r := range c.Rules {
		if r.matches(id) {
			return r.Category
		}
	}
	return CategoryOther
}

func prefix(p string, c Category) Rule   { return Rule{Kind: MatchPrefix, Pattern: p, Category: c} }
func suffix(p string, c Category) Rule   { return Rule{Kind: MatchSuffix, Pattern: p, Category: c} }
func contains(p string, c Category) Rule { return Rule{Kind: MatchContains, Pattern: p, Category: c} }
func exact(p string, c Category) Rule    { return Rule{Kind: MatchExact, Pattern: p, Category: c} }
