package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/taxonomy"
)

func (a *app) idsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "List the block ids of an instance with their category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := taxonomy.Lookup(a.cfg.Instance, a.cfg.Variant)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range inst.Taxonomy.Entries() {
				cat := inst.Category(e.ID)
				if category != "" && string(cat) != category {
					continue
				}
				unit := "-"
				if e.Index >= 0 {
					unit = e.Unit()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, cat, unit)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only ids of this category")
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	var show string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List built-in presets, or show what one sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := taxonomy.Lookup(a.cfg.Instance, a.cfg.Variant)
			if err != nil {
				return err
			}
			reg := engine.Presets(inst)
			out := cmd.OutOrStdout()
			if show == "" {
				for _, name := range reg.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			spec, ok := reg.Lookup(show)
			if !ok {
				return fmt.Errorf("%q: %w", show, engine.ErrUnknownPreset)
			}
			if spec == nil {
				fmt.Fprintf(out, "%s leaves every block as it is\n", show)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, id := range inst.Taxonomy.IDs() {
				enabled, strength := spec.Resolve(id)
				state := "off"
				if enabled {
					state = "on"
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", id, state, inst.Quantizer().Snap(strength))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "print the per-block result of this preset")
	return cmd
}
