package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newInitCmd creates the `init` command.
// Usage: srcindex init [--force] [gitlab flags]
func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	var values []*setterValue

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file",
		Long: `Writes the settings given on the command line to the configuration file
(srcindex.toml, or --config). Values already in the file are kept unless a
flag overrides them. An existing file is only replaced with --force.

Example:
  srcindex --tools-path "C:\Debuggers\x64" init --server-url https://gitlab.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("reading config: %w", err)
			}

			s, err := mergeSettings(cmd, opts, false)
			if err != nil {
				return err
			}
			if err := applyProviderFlags(cmd, gitlabFlags, values, &s); err != nil {
				return err
			}
			if err := s.Save(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", opts.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	values = addProviderFlags(cmd, gitlabFlags)

	return cmd
}
