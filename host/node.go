// Package host models the node-graph host that owns raw controls, their
// storage and persistence, and dispatches lifecycle callbacks.
package host

// Size is a node's on-screen size in cells.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NodeState is the persisted form of a node.
type NodeState struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Size   Size           `json:"size"`
	Values map[string]any `json:"values"`
}

// Hook handlers. Every slot may be nil.
type Hooks struct {
	Created   func(n *Node)
	Configure func(n *Node, st NodeState)
	Executed  func(n *Node, outputs map[string]any)
	Serialize func(n *Node, st *NodeState)
}

// Node is one host node: an ordered set of raw widgets plus lifecycle.
type Node struct {
	ID    string
	Type  string
	Title string
	Size  Size

	widgets []*Widget
	byName  map[string]*Widget

	host       Hooks
	extensions []Hooks

	populated bool
	redraws   int
}

// NewNode returns an empty node. Callers add widgets and then signal
// Populated.
func NewNode(id, typ, title string) *Node {
	return &Node{ID: id, Type: typ, Title: title, byName: make(map[string]*Widget)}
}

// AddWidget appends a raw control. A second widget with the same name
// replaces the lookup entry but keeps both in order.
func (n *Node) AddWidget(name string, kind Kind, value any) *Widget {
	w := &Widget{Name: name, Kind: kind, Value: value, node: n}
	n.widgets = append(n.widgets, w)
	n.byName[name] = w
	return w
}

// Widget looks a widget up by name.
func (n *Node) Widget(name string) *Widget {
	return n.byName[name]
}

// Widgets returns the widgets in order.
func (n *Node) Widgets() []*Widget {
	out := make([]*Widget, len(n.widgets))
	copy(out, n.widgets)
	return out
}

// VisibleRows sums the rows of every widget.
func (n *Node) VisibleRows() int {
	total := 0
	for _, w := range n.widgets {
		total += w.Rows()
	}
	return total
}

// SetHostHooks installs the host's own handlers. They always run before
// extension handlers.
func (n *Node) SetHostHooks(h Hooks) { n.host = h }

// Extend registers extension handlers. Extensions run after the host, in
// registration order; they never replace the host's handlers.
func (n *Node) Extend(h Hooks) { n.extensions = append(n.extensions, h) }

func (n *Node) chain() []Hooks {
	all := make([]Hooks, 0, 1+len(n.extensions))
	all = append(all, n.host)
	return append(all, n.extensions...)
}

// Populated is the host's readiness signal: every raw control exists.
// Created handlers fire on the first call only.
func (n *Node) Populated() {
	if n.populated {
		return
	}
	n.populated = true
	for _, h := range n.chain() {
		if h.Created != nil {
			h.Created(n)
		}
	}
}

// IsPopulated reports whether Populated has been signalled.
func (n *Node) IsPopulated() bool { return n.populated }

// Configure restores persisted state. Values are written raw, as stored,
// before Configure handlers run.
func (n *Node) Configure(st NodeState) {
	if st.Size.W > 0 {
		n.Size = st.Size
	}
	for name, v := range st.Values {
		if w := n.byName[name]; w != nil {
			w.Value = v
		}
	}
	for _, h := range n.chain() {
		if h.Configure != nil {
			h.Configure(n, st)
		}
	}
}

// Serialize captures the node's state, then lets handlers amend it.
func (n *Node) Serialize() NodeState {
	st := NodeState{ID: n.ID, Type: n.Type, Size: n.Size, Values: make(map[string]any, len(n.widgets))}
	for _, w := range n.widgets {
		st.Values[w.Name] = w.Value
	}
	for _, h := range n.chain() {
		if h.Serialize != nil {
			h.Serialize(n, &st)
		}
	}
	return st
}

// Executed delivers a completed execution's outputs.
func (n *Node) Executed(outputs map[string]any) {
	for _, h := range n.chain() {
		if h.Executed != nil {
			h.Executed(n, outputs)
		}
	}
}

// SetDirty requests a redraw.
func (n *Node) SetDirty() { n.redraws++ }

// Redraws returns how many redraws were requested.
func (n *Node) Redraws() int { return n.redraws }
