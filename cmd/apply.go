package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/panel"
	"github.com/ftahirops/biasdeck/ui"
)

func (a *app) applyCmd() *cobra.Command {
	var (
		set []string
		off []string
		on  []string
	)
	cmd := &cobra.Command{
		Use:   "apply [PRESET]",
		Short: "Apply a preset and per-block edits to the saved state",
		Long: `Loads the saved workflow state, applies PRESET (if given) and then the
individual edits, and writes the state back.

Examples:
  biasdeck apply "Soft Attention" -i te
  biasdeck apply -i vae --set dec_mid_attn=0.8 --off encoder_conv_in`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(a.cfg.Instance, nil)
			if err != nil {
				return err
			}
			if s.inst.ReadOnly {
				return fmt.Errorf("%s is read-only", s.inst.Name)
			}
			path := a.statePathOrDefault()
			if err := s.load(path, a.logger); err != nil {
				return err
			}

			if len(args) == 1 {
				if err := s.panel.ApplyPreset(args[0]); err != nil {
					return err
				}
			}
			edits, err := parseEdits(set)
			if err != nil {
				return err
			}
			bs := s.panel.Bindings()
			ids := make([]string, 0, len(edits))
			for id := range edits {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				b, ok := bs.Get(id)
				if !ok || !b.HasStrength() {
					return fmt.Errorf("unknown block %q", id)
				}
				b.SetValue(edits[id])
			}
			for _, group := range []struct {
				ids     []string
				enabled bool
			}{{off, false}, {on, true}} {
				for _, id := range group.ids {
					b, ok := bs.Get(id)
					if !ok {
						return fmt.Errorf("unknown block %q", id)
					}
					b.SetEnabled(group.enabled)
				}
			}

			if err := s.graph.SaveFile(path); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
			a.remember()
			a.logger.Info("state written",
				zap.String("path", path),
				zap.String("instance", s.inst.Name),
				zap.Int("edits", len(edits)+len(off)+len(on)))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "set strength, ID=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&off, "off", nil, "disable blocks")
	cmd.Flags().StringSliceVar(&on, "on", nil, "enable blocks")
	return cmd
}

// parseEdits reads ID=VALUE pairs.
func parseEdits(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		id, val, ok := strings.Cut(p, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("bad --set %q: want ID=VALUE", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("bad --set %q: %w", p, err)
		}
		out[strings.TrimSpace(id)] = v
	}
	return out, nil
}

func (a *app) renderCmd() *cobra.Command {
	var (
		width    int
		analysis string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the panel rows (or the inspector) without a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(a.cfg.Instance, ui.RowFactory(a.cfg.LabelWidth))
			if err != nil {
				return err
			}
			if err := s.load(a.statePathOrDefault(), a.logger); err != nil {
				return err
			}
			src := analysis
			if src == "" {
				src = a.cfg.PayloadPath
			}
			if src != "" {
				data, err := os.ReadFile(src)
				if err != nil {
					return err
				}
				s.node.Executed(map[string]any{panel.OutputField: []any{string(data)}})
				if s.panel.Overlay().Generation() == 0 {
					a.logger.Warn("analysis payload ignored", zap.String("path", src))
				}
			}

			out := cmd.OutOrStdout()
			if s.inst.ReadOnly {
				sum := engine.Summarize(s.panel.Overlay().Payload(), s.inst.Taxonomy, a.cfg.TopN)
				fmt.Fprintln(out, ui.RenderSummary(sum, width))
				return nil
			}
			fmt.Fprintln(out, ui.RenderNode(s.node, width))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 96, "row width in cells")
	cmd.Flags().StringVar(&analysis, "analysis", "", "analysis JSON file to overlay")
	return cmd
}
