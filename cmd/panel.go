package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/ui"
)

// panelFlags are the interactive-only options.
type panelFlags struct {
	recordPath string
	replayPath string
}

func (a *app) panelCmd() *cobra.Command {
	var pf panelFlags
	cmd := &cobra.Command{
		Use:         "panel",
		Short:       "Open the interactive block panel",
		Annotations: map[string]string{tuiAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(a.cfg.Instance, pf)
		},
	}
	addPanelFlags(cmd, &pf)
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	var pf panelFlags
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Open the read-only analysis inspector",
		Long: `Shows the impact analysis of the last execution for the diffusion
transformer (dit-inspect) or the text encoder (te-inspect, the default).
Use --payload to watch an analysis JSON file as it is rewritten.`,
		Annotations: map[string]string{tuiAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(inspectName(a.cfg.Instance), pf)
		},
	}
	addPanelFlags(cmd, &pf)
	return cmd
}

func addPanelFlags(cmd *cobra.Command, pf *panelFlags) {
	cmd.Flags().StringVar(&pf.recordPath, "record", "", "record analysis outputs to FILE (JSON lines)")
	cmd.Flags().StringVar(&pf.replayPath, "replay", "", "replay analysis outputs recorded in FILE")
}

// inspectName maps an editable instance to its read-only counterpart.
func inspectName(name string) string {
	if strings.HasSuffix(name, "-inspect") {
		return name
	}
	if name == "dit" {
		return "dit-inspect"
	}
	return "te-inspect"
}

func (a *app) runTUI(instance string, pf panelFlags) error {
	s, err := a.newSession(instance, ui.RowFactory(a.cfg.LabelWidth))
	if err != nil {
		return err
	}
	statePath := a.statePathOrDefault()
	if err := s.load(statePath, a.logger); err != nil {
		a.logger.Warn("saved state ignored", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := ui.Options{
		Graph:     s.graph,
		Panel:     s.panel,
		StatePath: statePath,
		TopN:      a.cfg.TopN,
		Logger:    a.logger,
	}

	if a.cfg.PayloadPath != "" {
		w, err := engine.NewPayloadWatcher(a.cfg.PayloadPath, a.logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", a.cfg.PayloadPath, err)
		}
		defer w.Stop()
		opts.Payloads = w.Payloads()
	}

	if pf.recordPath != "" {
		f, err := os.OpenFile(pf.recordPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("cannot create record file: %w", err)
		}
		defer f.Close()
		opts.Recorder = engine.NewOutputRecorder(f)
	}

	if pf.replayPath != "" {
		f, err := os.Open(pf.replayPath)
		if err != nil {
			return fmt.Errorf("cannot open replay file: %w", err)
		}
		defer f.Close()
		player, err := engine.NewOutputPlayer(f)
		if err != nil {
			return fmt.Errorf("cannot parse replay file: %w", err)
		}
		opts.Player = player
	}

	a.cfg.Instance = s.inst.Name
	if !s.inst.ReadOnly {
		defer a.remember()
	}

	model := ui.NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
