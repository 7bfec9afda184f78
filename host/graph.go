package host

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// InputDef declares one raw control of a node type.
type InputDef struct {
	Name    string
	Kind    Kind
	Default any
	Options []string
}

// NodeDef declares a node type.
type NodeDef struct {
	Type   string
	Title  string
	Inputs []InputDef
}

// Workflow is the persisted graph.
type Workflow struct {
	Nodes []NodeState `json:"nodes"`
}

// Graph owns nodes and their persistence.
type Graph struct {
	nodes []*Node
	byID  map[string]*Node

	// OnNodeAdded runs after a node's widgets exist and before the
	// readiness signal, so extensions can attach their hooks.
	OnNodeAdded func(n *Node)
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]*Node)}
}

// Add instantiates def with a fresh id, populates its widgets and signals
// readiness.
func (g *Graph) Add(def NodeDef) *Node {
	return g.AddWithID(uuid.NewString(), def)
}

// AddWithID is Add with a caller-chosen id, used when restoring.
func (g *Graph) AddWithID(id string, def NodeDef) *Node {
	n := NewNode(id, def.Type, def.Title)
	for _, in := range def.Inputs {
		w := n.AddWidget(in.Name, in.Kind, in.Default)
		if len(in.Options) > 0 {
			w.Options = append([]string(nil), in.Options...)
		}
	}
	g.nodes = append(g.nodes, n)
	g.byID[id] = n
	if g.OnNodeAdded != nil {
		g.OnNodeAdded(n)
	}
	n.Populated()
	return n
}

// Node returns the node with id.
func (g *Graph) Node(id string) *Node { return g.byID[id] }

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Save writes every node's serialized state as JSON.
func (g *Graph) Save(w io.Writer) error {
	wf := Workflow{Nodes: make([]NodeState, 0, len(g.nodes))}
	for _, n := range g.nodes {
		wf.Nodes = append(wf.Nodes, n.Serialize())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wf)
}

// Load configures nodes from a saved workflow. States whose id is not in
// the graph are matched by type against the first unconfigured node of
// that type, so a fresh graph can adopt a saved one.
func (g *Graph) Load(r io.Reader) error {
	var wf Workflow
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return fmt.Errorf("decode workflow: %w", err)
	}
	used := make(map[*Node]bool)
	for _, st := range wf.Nodes {
		n := g.byID[st.ID]
		if n == nil {
			for _, cand := range g.nodes {
				if !used[cand] && cand.Type == st.Type {
					n = cand
					break
				}
			}
		}
		if n == nil {
			continue
		}
		used[n] = true
		n.Configure(st)
	}
	return nil
}

// SaveFile writes the workflow to path with 0600 permissions.
func (g *Graph) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := g.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a workflow from path.
func (g *Graph) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.Load(f)
}
