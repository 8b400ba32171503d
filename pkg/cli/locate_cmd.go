package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewLocateCmd returns the `locate` cobra command: map a line of a tangled
// file back to its markdown origin.
func NewLocateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <file> <line>",
		Short: "find the markdown origin of a tangled line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line number %q", args[1])
			}

			ctx := cmd.Context()
			ec, err := deps.EngineContext(ctx)
			if err != nil {
				return err
			}

			pos, err := ec.Locate(ctx, args[0], line)
			if err != nil {
				return err
			}
			if pos == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no origin (line is outside any annotated block)")
				return nil
			}
			if pos.HasBlock {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\t%s\n", pos.Path, pos.Line, pos.Block.String())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", pos.Path, pos.Line)
			}
			return nil
		},
	}
	return cmd
}
