package model

// Score bounds for impact scores.
const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// BlockScore is one entry of the "blocks" section of an analysis payload.
type BlockScore struct {
	Score    float64            `json:"score"`
	Channels map[string]float64 `json:"channels,omitempty"`
}

// LayerStat is one entry of the "layers" section (text-encoder inspector).
type LayerStat struct {
	Magnitude float64            `json:"magnitude"`
	Channels  map[string]float64 `json:"channels,omitempty"`
}

// AnalysisPayload is the parsed, validated form of an external analysis
// document. Sections that were absent stay nil.
type AnalysisPayload struct {
	Blocks   map[string]BlockScore `json:"blocks,omitempty"`
	Layers   map[string]LayerStat  `json:"layers,omitempty"`
	Ablation map[string]BlockScore `json:"ablation,omitempty"`
}

// Empty reports whether the payload carries no data at all.
func (p *AnalysisPayload) Empty() bool {
	return p == nil || (len(p.Blocks) == 0 && len(p.Layers) == 0 && len(p.Ablation) == 0)
}

// ClampScore clamps s to [ScoreMin, ScoreMax].
func ClampScore(s float64) float64 {
	if s < ScoreMin {
		return ScoreMin
	}
	if s > ScoreMax {
		return ScoreMax
	}
	return s
}
