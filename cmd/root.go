package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ftahirops/biasdeck/config"
	"github.com/ftahirops/biasdeck/logging"
)

// Version is set at build time via ldflags.
var Version = "0.3.0"

// tuiAnnotation marks commands that take over the terminal; their logs go
// to a file only.
const tuiAnnotation = "tui"

// app is the state shared by every command of one invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	// Global flags
	configPath string
	instance   string
	variant    string
	statePath  string
	payload    string
	logFile    string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "biasdeck",
		Short: "biasdeck - per-block strength control for diffusion model debiasing",
		Long: `biasdeck edits per-block enable flags and strength multipliers for a
diffusion transformer, its text encoder and its VAE, and shows impact
analysis coming back from the last execution.

Run without arguments to open the interactive panel.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{tuiAnnotation: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(a.cfg.Instance, panelFlags{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/biasdeck/config.yaml)")
	pf.StringVarP(&a.instance, "instance", "i", "", "block set: dit, te, vae, dit-inspect, te-inspect")
	pf.StringVar(&a.variant, "variant", "", "model variant for dit: zimage, klein-4b, klein-9b")
	pf.StringVar(&a.statePath, "state", "", "workflow state file")
	pf.StringVar(&a.payload, "payload", "", "analysis JSON file to watch")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.panelCmd(),
		a.inspectCmd(),
		a.idsCmd(),
		a.presetsCmd(),
		a.applyCmd(),
		a.renderCmd(),
		a.watchCmd(),
	)
	return root
}

// Run executes the command tree against os.Args.
func Run() error {
	return NewRootCmd().Execute()
}

// setup loads the config file, lets flags override it and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "biasdeck: warning: %v\n", err)
	}
	if a.instance != "" {
		cfg.Instance = a.instance
	}
	if a.variant != "" {
		cfg.Variant = a.variant
	}
	if a.statePath != "" {
		cfg.StatePath = a.statePath
	}
	if a.payload != "" {
		cfg.PayloadPath = a.payload
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if cmd.Annotations[tuiAnnotation] == "" {
		opts.Console = true
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("instance", cfg.Instance),
		zap.String("variant", cfg.Variant))
	return nil
}

// statePathOrDefault falls back to the workflow file in the config dir.
func (a *app) statePathOrDefault() string {
	if a.cfg.StatePath != "" {
		return a.cfg.StatePath
	}
	return config.DefaultStatePath()
}

// remember persists the instance, variant and state path as defaults for
// the next run.
func (a *app) remember() {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	if path == "" {
		return
	}
	saved, err := config.LoadFile(path)
	if err != nil {
		a.logger.Warn("config not updated", zap.Error(err))
		return
	}
	saved.Instance = a.cfg.Instance
	saved.Variant = a.cfg.Variant
	if a.cfg.StatePath != "" {
		saved.StatePath = a.cfg.StatePath
	}
	if err := config.SaveFile(path, saved); err != nil {
		a.logger.Warn("config not saved", zap.String("path", path), zap.Error(err))
	}
}
