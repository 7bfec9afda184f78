package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ftahirops/biasdeck/model"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// ThirdNames labels structural thirds.
var ThirdNames = [3]string{"early", "middle", "late"}

// UnitStat is one bar of the inspector chart.
type UnitStat struct {
	Unit      string
	Magnitude float64
	Third     int
}

// Ranked is one entry of the top-N list.
type Ranked struct {
	ID       string
	Score    float64
	Channels map[string]float64
}

// Summary is the inspector's aggregate view of a payload.
type Summary struct {
	Units []UnitStat
	Top   []Ranked
	Max   float64 // largest unit magnitude, for bar scaling
}

// Summarize aggregates p. With a "layers" section the bars come straight
// from it; otherwise block scores are averaged per structural unit of
// tax. The top-N list ranks ablation entries when present, else blocks.
func Summarize(p *model.AnalysisPayload, tax *taxonomy.Taxonomy, topN int) Summary {
	var s Summary
	if p.Empty() {
		return s
	}
	if len(p.Layers) > 0 {
		s.Units = layerUnits(p.Layers)
	} else if tax != nil {
		s.Units = blockUnits(p.Blocks, tax)
	}
	for _, u := range s.Units {
		if u.Magnitude > s.Max {
			s.Max = u.Magnitude
		}
	}

	src := p.Ablation
	if len(src) == 0 {
		src = p.Blocks
	}
	s.Top = rank(src, topN)
	return s
}

func layerUnits(layers map[string]model.LayerStat) []UnitStat {
	keys := make([]string, 0, len(layers))
	for k := range layers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return unitLess(keys[i], keys[j]) })
	out := make([]UnitStat, len(keys))
	for i, k := range keys {
		out[i] = UnitStat{Unit: k, Magnitude: layers[k].Magnitude, Third: taxonomy.Third(i, len(keys))}
	}
	return out
}

func blockUnits(blocks map[string]model.BlockScore, tax *taxonomy.Taxonomy) []UnitStat {
	sum := make(map[string]float64)
	cnt := make(map[string]int)
	for id, b := range blocks {
		e, ok := tax.Lookup(id)
		if !ok || e.Index < 0 {
			continue
		}
		sum[e.Unit()] += b.Score
		cnt[e.Unit()]++
	}
	var out []UnitStat
	units := tax.Units()
	for i, u := range units {
		if cnt[u] == 0 {
			continue
		}
		out = append(out, UnitStat{Unit: u, Magnitude: sum[u] / float64(cnt[u]), Third: taxonomy.Third(i, len(units))})
	}
	return out
}

func rank(src map[string]model.BlockScore, n int) []Ranked {
	out := make([]Ranked, 0, len(src))
	for id, b := range src {
		out = append(out, Ranked{ID: id, Score: b.Score, Channels: b.Channels})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// unitLess orders unit keys by prefix, then numbered keys by their
// trailing number ("layers_2" < "layers_10") ahead of unnumbered ones,
// then lexically. Unnumbered keys use the whole key as their prefix.
func unitLess(a, b string) bool {
	ka, kb := sortKey(a), sortKey(b)
	if ka.prefix != kb.prefix {
		return ka.prefix < kb.prefix
	}
	if ka.numbered != kb.numbered {
		return ka.numbered
	}
	if ka.n != kb.n {
		return ka.n < kb.n
	}
	return a < b
}

type unitKey struct {
	prefix   string
	numbered bool
	n        int
}

func sortKey(s string) unitKey {
	if head, n, ok := splitIndex(s); ok {
		return unitKey{prefix: head, numbered: true, n: n}
	}
	return unitKey{prefix: s}
}

func splitIndex(s string) (string, int, bool) {
	i := strings.LastIndexAny(s, "_.")
	head, tail := "", s
	if i >= 0 {
		head, tail = s[:i], s[i+1:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return "", 0, false
	}
	return head, n, true
}
