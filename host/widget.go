package host

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a raw host control.
type Kind int

const (
	KindToggle Kind = iota
	KindNumber
	KindCombo
)

func (k Kind) String() string {
	switch k {
	case KindToggle:
		return "toggle"
	case KindNumber:
		return "number"
	case KindCombo:
		return "combo"
	}
	return "unknown"
}

// PointerKind distinguishes pointer phases.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is a pointer event in row-local coordinates.
type PointerEvent struct {
	Kind PointerKind
	X    float64
	Y    float64
}

// Drawer is a custom face installed over a raw control. Pointer returns
// true when the event was handled and must not propagate further.
type Drawer interface {
	Rows() int
	Render(width int) string
	Pointer(ev PointerEvent, width int) bool
}

// Widget is one raw control owned by a node. Value is loosely typed the
// way the host stores it; readers go through the guarded accessors.
type Widget struct {
	Name    string
	Kind    Kind
	Value   any
	Options []string // combo choices

	// OnChange fires when the value changes through host interaction.
	OnChange func(w *Widget)

	// Drawer replaces the native face when set.
	Drawer Drawer

	// Subsumed widgets are folded into another widget's face and occupy
	// no rows of their own.
	Subsumed bool

	node *Node
}

// Node returns the owning node.
func (w *Widget) Node() *Node { return w.node }

// Rows returns the number of visible rows the widget occupies.
func (w *Widget) Rows() int {
	if w.Subsumed {
		return 0
	}
	if w.Drawer != nil {
		return w.Drawer.Rows()
	}
	return 1
}

// Bool reads the value as a boolean. Non-boolean values read as false.
func (w *Widget) Bool() bool {
	b, _ := w.Value.(bool)
	return b
}

// SetBool stores b.
func (w *Widget) SetBool(b bool) { w.Value = b }

// Float reads the value as a finite number. Strings holding numbers are
// accepted; anything else reports ok=false.
func (w *Widget) Float() (float64, bool) {
	var f float64
	switch v := w.Value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SetFloat stores f.
func (w *Widget) SetFloat(f float64) { w.Value = f }

// String reads the value as a string.
func (w *Widget) String() string {
	s, _ := w.Value.(string)
	return s
}

// Set stores v and fires OnChange, the way host interaction does.
func (w *Widget) Set(v any) {
	w.Value = v
	if w.OnChange != nil {
		w.OnChange(w)
	}
}

// DefaultPointer is the host's native interaction for the widget kind:
// toggles flip and combos advance on pointer down. Numbers have no
// pointer behavior of their own.
func (w *Widget) DefaultPointer(ev PointerEvent) bool {
	if ev.Kind != PointerDown {
		return false
	}
	switch w.Kind {
	case KindToggle:
		w.Set(!w.Bool())
		if w.node != nil {
			w.node.SetDirty()
		}
		return true
	case KindCombo:
		w.Cycle(1)
		return true
	}
	return false
}

// Cycle moves a combo by delta options, wrapping around.
func (w *Widget) Cycle(delta int) {
	if w.Kind != KindCombo || len(w.Options) == 0 {
		return
	}
	cur := 0
	for i, o := range w.Options {
		if o == w.String() {
			cur = i
			break
		}
	}
	n := len(w.Options)
	next := ((cur+delta)%n + n) % n
	w.Set(w.Options[next])
	if w.node != nil {
		w.node.SetDirty()
	}
}
