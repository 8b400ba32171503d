package cli

import "github.com/spf13/cobra"

// NewSyncCmd returns the `sync` cobra command: stitch, then tangle, each as
// its own atomic transaction.
func NewSyncCmd(deps *Deps) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "stitch then tangle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ec, err := deps.EngineContext(ctx)
			if err != nil {
				return err
			}
			return ec.Sync(ctx, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite externally modified files")
	return cmd
}
