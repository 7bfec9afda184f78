package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/model"
)

// ErrInvalidPayload wraps every reason a payload is rejected.
var ErrInvalidPayload = errors.New("invalid analysis payload")

// Overlay holds the most recent valid analysis payload. A new payload
// replaces the old one whole; an invalid one changes nothing.
type Overlay struct {
	payload    *model.AnalysisPayload
	generation int
	log        *zap.Logger
}

// NewOverlay returns an empty overlay. A nil logger is replaced by a no-op.
func NewOverlay(log *zap.Logger) *Overlay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Overlay{log: log}
}

// Ingest parses raw and, on success, replaces the overlay state. It never
// returns an error: malformed input is dropped and reported as false.
func (o *Overlay) Ingest(raw string) bool {
	p, err := ParsePayload(raw)
	if err != nil {
		o.log.Debug("analysis payload discarded", zap.Error(err), zap.Int("bytes", len(raw)))
		return false
	}
	o.payload = p
	o.generation++
	o.log.Debug("analysis payload ingested",
		zap.Int("generation", o.generation),
		zap.Int("blocks", len(p.Blocks)),
		zap.Int("layers", len(p.Layers)),
		zap.Int("ablation", len(p.Ablation)))
	return true
}

// Score returns the impact score for id, if the current payload has one.
func (o *Overlay) Score(id string) (float64, bool) {
	if o.payload == nil {
		return 0, false
	}
	if b, ok := o.payload.Blocks[id]; ok {
		return b.Score, true
	}
	if b, ok := o.payload.Ablation[id]; ok {
		return b.Score, true
	}
	return 0, false
}

// Payload returns the current payload, nil before the first valid ingest.
func (o *Overlay) Payload() *model.AnalysisPayload { return o.payload }

// Generation counts accepted payloads.
func (o *Overlay) Generation() int { return o.generation }

// ParsePayload validates raw as an analysis document. It fails when raw is
// not a JSON object, carries none of the known sections, or a known
// section is not an object. Individual entries without a numeric score
// are dropped; scores are clamped to [0, 100].
func ParsePayload(raw string) (*model.AnalysisPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: null document", ErrInvalidPayload)
	}

	p := &model.AnalysisPayload{}
	found := false
	if sec, ok := doc["blocks"]; ok {
		m, err := scoreSection(sec)
		if err != nil {
			return nil, fmt.Errorf("%w: blocks: %v", ErrInvalidPayload, err)
		}
		p.Blocks = m
		found = true
	}
	if sec, ok := doc["ablation"]; ok {
		m, err := scoreSection(sec)
		if err != nil {
			return nil, fmt.Errorf("%w: ablation: %v", ErrInvalidPayload, err)
		}
		p.Ablation = m
		found = true
	}
	if sec, ok := doc["layers"]; ok {
		m, err := layerSection(sec)
		if err != nil {
			return nil, fmt.Errorf("%w: layers: %v", ErrInvalidPayload, err)
		}
		p.Layers = m
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w: no known section", ErrInvalidPayload)
	}
	return p, nil
}

func objectOf(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("not an object")
	}
	return m, nil
}

func scoreSection(raw json.RawMessage) (map[string]model.BlockScore, error) {
	entries, err := objectOf(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.BlockScore, len(entries))
	for id, e := range entries {
		fields, err := objectOf(e)
		if err != nil {
			continue
		}
		score, ok := numberField(fields, "score")
		if !ok {
			continue
		}
		out[id] = model.BlockScore{Score: model.ClampScore(score), Channels: channelsField(fields)}
	}
	return out, nil
}

func layerSection(raw json.RawMessage) (map[string]model.LayerStat, error) {
	entries, err := objectOf(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.LayerStat, len(entries))
	for id, e := range entries {
		var mag float64
		var ok bool
		var channels map[string]float64
		if fields, err := objectOf(e); err == nil {
			mag, ok = numberField(fields, "magnitude")
			channels = channelsField(fields)
		} else {
			// Bare numbers are accepted as magnitudes.
			mag, ok = number(e)
		}
		if !ok {
			continue
		}
		out[id] = model.LayerStat{Magnitude: math.Abs(mag), Channels: channels}
	}
	return out, nil
}

func number(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberField(fields map[string]json.RawMessage, name string) (float64, bool) {
	raw, ok := fields[name]
	if !ok {
		return 0, false
	}
	return number(raw)
}

func channelsField(fields map[string]json.RawMessage) map[string]float64 {
	raw, ok := fields["channels"]
	if !ok {
		return nil
	}
	m, err := objectOf(raw)
	if err != nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if f, ok := number(v); ok {
			out[k] = f
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
