package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shakfu/entangled-rs/pkg/entangled"
)

// renderError prints a one-line user-facing message for err.
func renderError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "entangled: %s\n", err.Error())
}

// resolveFileArgs turns positional file arguments into a validated source
// list; no arguments means "all sources".
func resolveFileArgs(ec *entangled.Context, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return ec.SourceFilesFiltered(args)
}
