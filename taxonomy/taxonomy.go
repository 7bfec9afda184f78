// Package taxonomy enumerates the controllable blocks of a model
// architecture from its static structural parameters.
package taxonomy

import (
	"fmt"
	"strconv"
)

// Group is a run of repeated sub-structures. Ids are
// "<prefix>_<index>_<part>" for Count > 0 and "<prefix>_<part>" (or the bare
// part when Prefix is empty) for Count == 0.
type Group struct {
	Prefix string
	Count  int
	Parts  []string
	// Include filters irregular structures, e.g. a downsample that only
	// exists on some stages. Nil includes every part.
	Include func(index int, part string) bool
}

// Spec is the structural description of one architecture.
type Spec struct {
	Name   string
	Groups []Group
}

// Entry is one generated id plus where it came from.
type Entry struct {
	ID    string
	Group string
	Index int // -1 for fixed (non-repeated) parts
	Part  string
}

// Unit returns the structural unit the entry belongs to ("layers_3"), or
// the id itself for fixed parts.
func (e Entry) Unit() string {
	if e.Index < 0 {
		return e.ID
	}
	return e.Group + "_" + strconv.Itoa(e.Index)
}

// Taxonomy is the immutable, ordered, duplicate-free id list of one panel.
type Taxonomy struct {
	name    string
	entries []Entry
	index   map[string]int
}

// Build expands spec into a Taxonomy. Same spec, same sequence. A
// duplicate id is a defect in the Spec literal and panics.
func Build(spec Spec) *Taxonomy {
	t := &Taxonomy{name: spec.Name, index: make(map[string]int)}
	for _, g := range spec.Groups {
		if g.Count == 0 {
			for _, part := range g.Parts {
				if g.Include != nil && !g.Include(-1, part) {
					continue
				}
				t.add(Entry{ID: joinID(g.Prefix, part), Group: g.Prefix, Index: -1, Part: part})
			}
			continue
		}
		for i := 0; i < g.Count; i++ {
			for _, part := range g.Parts {
				if g.Include != nil && !g.Include(i, part) {
					continue
				}
				id := joinID(g.Prefix+"_"+strconv.Itoa(i), part)
				t.add(Entry{ID: id, Group: g.Prefix, Index: i, Part: part})
			}
		}
	}
	return t
}

func joinID(prefix, part string) string {
	if prefix == "" {
		return part
	}
	return prefix + "_" + part
}

func (t *Taxonomy) add(e Entry) {
	if _, dup := t.index[e.ID]; dup {
		panic(fmt.Sprintf("taxonomy %s: duplicate block id %q", t.name, e.ID))
	}
	t.index[e.ID] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Name returns the spec name the taxonomy was built from.
func (t *Taxonomy) Name() string { return t.name }

// Len returns the number of ids.
func (t *Taxonomy) Len() int { return len(t.entries) }

// IDs returns the ids in presentation order.
func (t *Taxonomy) IDs() []string {
	ids := make([]string, len(t.entries))
	for i, e := range t.entries {
		ids[i] = e.ID
	}
	return ids
}

// Entries returns a copy of the entries in presentation order.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Contains reports whether id belongs to the taxonomy.
func (t *Taxonomy) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Lookup returns the entry for id.
func (t *Taxonomy) Lookup(id string) (Entry, bool) {
	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// GroupSize returns the repeat count of the group with prefix, 0 for
// fixed or unknown groups.
func (t *Taxonomy) GroupSize(prefix string) int {
	n := 0
	for _, e := range t.entries {
		if e.Group == prefix && e.Index >= n {
			n = e.Index + 1
		}
	}
	return n
}

// Third places index i of n into 0 (early), 1 (middle) or 2 (late).
func Third(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	t := i * 3 / n
	if t > 2 {
		t = 2
	}
	return t
}

// Units returns the distinct repeated structural units ("layers_0",
// "layers_1", ...) in presentation order. Fixed parts are not units.
func (t *Taxonomy) Units() []string {
	seen := make(map[string]bool)
	var units []string
	for _, e := range t.entries {
		if e.Index < 0 {
			continue
		}
		u := e.Unit()
		if !seen[u] {
			seen[u] = true
			units = append(units, u)
		}
	}
	return units
}
