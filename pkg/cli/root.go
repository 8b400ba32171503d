package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/shakfu/entangled-rs/pkg/entangled"
	"github.com/shakfu/entangled-rs/pkg/log"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

// Deps carries the flag state shared by all commands. Each command builds
// its own engine context from it at run time, so every invocation starts
// from a fresh reference map and file database view.
type Deps struct {
	Dir        string
	ConfigPath string
	LogLevel   string
	LogJSON    bool
}

// EngineContext loads the configuration and file database for the current
// flags.
func (d *Deps) EngineContext(ctx context.Context) (*entangled.Context, error) {
	baseDir := d.Dir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		baseDir = wd
	}

	var cfg *entangled.Config
	var err error
	if d.ConfigPath != "" {
		cfg, err = entangled.ReadConfigFile(ctx, d.ConfigPath)
	} else {
		cfg, err = entangled.ReadConfig(ctx, baseDir)
	}
	if err != nil {
		return nil, err
	}
	return entangled.NewContext(ctx, cfg, baseDir)
}

// NewRootCmd builds the root cobra command and installs the subcommands.
// PersistentPreRun installs a logger on the command context unless the
// caller already set one (tests set their own via cmd.SetContext).
func NewRootCmd() *cobra.Command {
	deps := &Deps{}

	cmd := &cobra.Command{
		Use:           "entangled",
		Short:         "bidirectional literate programming",
		Long:          "Extract source files from markdown (tangle) and write edits back (stitch).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if log.FromContext(ctx) == log.FromContext(context.Background()) {
				lg := log.NewLogger(log.LoggerConfig{
					Version: Version,
					Level:   log.ParseLevel(deps.LogLevel),
					JSON:    deps.LogJSON,
				})
				ctx = log.ContextWithLogger(ctx, lg)
			}
			cmd.SetContext(ctx)
		},
	}

	cmd.PersistentFlags().StringVarP(&deps.Dir, "dir", "C", "", "base directory (default: working directory)")
	cmd.PersistentFlags().StringVar(&deps.ConfigPath, "config", "", "explicit config file path")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "emit logs as JSON")

	cmd.AddCommand(
		NewTangleCmd(deps),
		NewStitchCmd(deps),
		NewSyncCmd(deps),
		NewWatchCmd(deps),
		NewListCmd(deps),
		NewLocateCmd(deps),
		NewInitCmd(deps),
	)
	return cmd
}

// Run executes the CLI and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		renderError(cmd, err)
		return entangled.ExitCode(err)
	}
	return 0
}
