package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/host"
	"github.com/ftahirops/biasdeck/panel"
	"github.com/ftahirops/biasdeck/taxonomy"
)

// session is one graph holding a single debias node with its panel.
type session struct {
	inst  *taxonomy.Instance
	graph *host.Graph
	node  *host.Node
	panel *panel.Panel
}

// newSession builds the node for instance and attaches the panel before
// the node signals readiness, the way a host loads an extension.
func (a *app) newSession(instance string, rows panel.RowFactory) (*session, error) {
	inst, err := taxonomy.Lookup(instance, a.cfg.Variant)
	if err != nil {
		return nil, err
	}
	s := &session{inst: inst, graph: host.NewGraph()}
	s.graph.OnNodeAdded = func(n *host.Node) {
		s.panel = panel.Attach(n, panel.Options{
			Instance: inst,
			MinWidth: float64(a.cfg.MinPanelWidth),
			NewRow:   rows,
			Logger:   a.logger,
		})
	}
	s.node = s.graph.Add(panel.NodeDef(inst, nil))
	return s, nil
}

// load restores saved state. A missing file leaves the defaults.
func (s *session) load(path string, log *zap.Logger) error {
	if path == "" {
		return nil
	}
	err := s.graph.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("no saved state", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state %s: %w", path, err)
	}
	log.Debug("state restored", zap.String("path", path))
	return nil
}
