package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTangleCmd returns the `tangle` cobra command.
//
// Usage examples:
//
//	entangled tangle
//	entangled tangle --force docs/setup.md
func NewTangleCmd(deps *Deps) *cobra.Command {
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "tangle [file...]",
		Short: "extract source files from markdown",
		Long: `Parse the markdown sources and write every target file they compose.

Unchanged targets are left alone. A target modified outside of entangled
aborts the run unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ec, err := deps.EngineContext(ctx)
			if err != nil {
				return err
			}

			files, err := resolveFileArgs(ec, args)
			if err != nil {
				return err
			}
			tx, err := ec.TangleFiles(ctx, files)
			if err != nil {
				return err
			}

			for _, line := range tx.Describe() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if dryRun {
				return nil
			}
			return ec.ExecuteAndCommit(ctx, tx, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite externally modified targets")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show pending actions without writing")
	return cmd
}
