package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewWatchCmd returns the `watch` cobra command. It runs an initial sync and
// then re-syncs after every debounced change under the base directory until
// interrupted.
func NewWatchCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "watch for changes and keep both sides in sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ec, err := deps.EngineContext(ctx)
			if err != nil {
				return err
			}
			if err := ec.Sync(ctx, false); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "watching for changes (ctrl-c to stop)")
			err = ec.Watch(ctx, nil)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	return cmd
}
