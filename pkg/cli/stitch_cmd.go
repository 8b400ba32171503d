package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStitchCmd returns the `stitch` cobra command.
func NewStitchCmd(deps *Deps) *cobra.Command {
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "stitch [file...]",
		Short: "write edits in tangled files back to markdown",
		Long: `Read the annotation markers in every tangled target, compare each leaf
block against its markdown origin, and update the markdown where the tangled
file was edited.`,
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
			tx, err := ec.StitchFiles(ctx, files)
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

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite externally modified markdown")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show pending actions without writing")
	return cmd
}
