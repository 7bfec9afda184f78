package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/engine"
	"github.com/ftahirops/biasdeck/panel"
	"github.com/ftahirops/biasdeck/ui"
)

// ── ANSI color/style codes ──────────────────────────────────────────────────

const (
	R = "\033[0m" // reset
	B = "\033[1m" // bold
	D = "\033[2m" // dim

	FCyn  = "\033[36m"
	FBWht = "\033[97m"
	BBlu  = "\033[44m"
)

func hr(width int) string {
	return D + strings.Repeat("─", width) + R
}

type watchOptions struct {
	count int
	width int
	clear bool
}

func (a *app) watchCmd() *cobra.Command {
	var wo watchOptions
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the analysis view every time the payload file changes",
		Long: `Watches the --payload file and reprints the rows (editable instances)
or the inspector (read-only instances) after each rewrite, without a
fullscreen UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.PayloadPath == "" {
				return fmt.Errorf("watch needs --payload")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, cmd.OutOrStdout(), wo)
		},
	}
	cmd.Flags().IntVarP(&wo.count, "count", "n", 0, "number of payloads to print (0 = until interrupted)")
	cmd.Flags().IntVarP(&wo.width, "width", "w", 96, "row width in cells")
	cmd.Flags().BoolVar(&wo.clear, "clear", true, "clear the screen before each print")
	return cmd
}

func (a *app) runWatch(ctx context.Context, out io.Writer, wo watchOptions) error {
	s, err := a.newSession(a.cfg.Instance, ui.RowFactory(a.cfg.LabelWidth))
	if err != nil {
		return err
	}
	if err := s.load(a.statePathOrDefault(), a.logger); err != nil {
		a.logger.Warn("saved state ignored", zap.Error(err))
	}

	w, err := engine.NewPayloadWatcher(a.cfg.PayloadPath, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.PayloadPath, err)
	}
	defer w.Stop()

	iteration := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(out, "\n%sStopped.%s\n", D, R)
			return nil
		case raw, ok := <-w.Payloads():
			if !ok {
				return nil
			}
			s.node.Executed(map[string]any{panel.OutputField: []any{raw}})
			iteration++

			if wo.clear {
				fmt.Fprint(out, "\033[2J\033[H")
			}
			iter := fmt.Sprintf("#%d", iteration)
			if wo.count > 0 {
				iter = fmt.Sprintf("#%d/%d", iteration, wo.count)
			}
			fmt.Fprintf(out, " %s%s biasdeck v%s %s  %s  %s%s%s  %s  %sanalysis #%d%s\n",
				B, BBlu+FBWht, Version, R,
				B+time.Now().Format("15:04:05")+R,
				FCyn, s.inst.Name, R,
				D+iter+R,
				D, s.panel.Overlay().Generation(), R)
			fmt.Fprintln(out, hr(wo.width))

			if s.inst.ReadOnly {
				sum := engine.Summarize(s.panel.Overlay().Payload(), s.inst.Taxonomy, a.cfg.TopN)
				fmt.Fprintln(out, ui.RenderSummary(sum, wo.width))
			} else {
				fmt.Fprintln(out, ui.RenderNode(s.node, wo.width))
			}

			fmt.Fprintln(out, hr(wo.width))
			fmt.Fprintf(out, " %sCtrl+C%s to quit\n", B, R)

			if wo.count > 0 && iteration >= wo.count {
				return nil
			}
		}
	}
}
