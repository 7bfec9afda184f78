package engine

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// OutputFrame is one completed execution written to disk.
type OutputFrame struct {
	Time    time.Time      `json:"time"`
	NodeID  string         `json:"node_id,omitempty"`
	Outputs map[string]any `json:"outputs"`
}

// OutputRecorder appends execution outputs as JSON lines.
type OutputRecorder struct {
	writer *json.Encoder
	mu     sync.Mutex
}

// NewOutputRecorder creates a recorder that writes JSON lines to w.
func NewOutputRecorder(w io.Writer) *OutputRecorder {
	return &OutputRecorder{writer: json.NewEncoder(w)}
}

// Record writes one frame.
func (r *OutputRecorder) Record(nodeID string, outputs map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writer.Encode(OutputFrame{Time: time.Now(), NodeID: nodeID, Outputs: outputs})
}

// OutputPlayer replays recorded executions in order.
type OutputPlayer struct {
	frames []OutputFrame
	idx    int
	mu     sync.Mutex
}

// NewOutputPlayer reads JSON lines from r. Malformed lines are skipped.
func NewOutputPlayer(r io.Reader) (*OutputPlayer, error) {
	dec := json.NewDecoder(r)
	var frames []OutputFrame
	for {
		var f OutputFrame
		if err := dec.Decode(&f); err != nil {
			if err == io.EOF {
				break
			}
			// A syntax error leaves the decoder unusable; keep what we have.
			if _, ok := err.(*json.SyntaxError); ok {
				break
			}
			continue
		}
		frames = append(frames, f)
	}
	return &OutputPlayer{frames: frames}, nil
}

// Next returns the next frame, or false at the end.
func (p *OutputPlayer) Next() (OutputFrame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.frames) {
		return OutputFrame{}, false
	}
	f := p.frames[p.idx]
	p.idx++
	return f, true
}

// Seek moves the cursor to frame i (clamped) and returns that frame.
func (p *OutputPlayer) Seek(i int) (OutputFrame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return OutputFrame{}, false
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p.frames) {
		i = len(p.frames) - 1
	}
	p.idx = i + 1
	return p.frames[i], true
}

// Len returns the number of frames.
func (p *OutputPlayer) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Index returns the next frame index.
func (p *OutputPlayer) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}
