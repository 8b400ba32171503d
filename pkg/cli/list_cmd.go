package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewListCmd returns the `list` cobra command, an inventory of the
// discovered markdown sources.
func NewListCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list markdown sources, their titles, and their targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ec, err := deps.EngineContext(ctx)
			if err != nil {
				return err
			}

			files, err := ec.SourceFiles()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range files {
				info, err := ec.DescribeDocument(ctx, path)
				if err != nil {
					return err
				}
				title := info.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(out, "%s\t%s\t%d blocks", info.Path, title, info.Blocks)
				if len(info.Targets) > 0 {
					fmt.Fprintf(out, "\t-> %s", strings.Join(info.Targets, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}
