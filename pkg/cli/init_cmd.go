package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterConfig = `version = "2.0"

source_patterns = ["**/*.md", "**/*.qmd", "**/*.Rmd"]

# style = "entangled-rs"
# output_dir = "src"
# annotation = "standard"
# namespace_default = "none"

[hooks]
shebang = false
spdx_license = false
`

// NewInitCmd returns the `init` cobra command, which writes a starter
// entangled.toml into the base directory.
func NewInitCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a starter entangled.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir := deps.Dir
			if baseDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				baseDir = wd
			}

			path := filepath.Join(baseDir, "entangled.toml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	return cmd
}
