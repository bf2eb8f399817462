package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cbout22/srcindex/internal/tools"
)

// newCheckCmd creates the `check` command.
// Usage: srcindex check [--strict]
func newCheckCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the debugging tools can be found",
		Long: `Looks for srctool.exe and pdbstr.exe in --tools-path (or its srcsrv
subdirectory), or in the default Windows Kits locations when no path is
given. Useful in CI/CD pipelines before a build publishes symbols.

With --strict, the command exits with a non-zero code if a tool is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return runCheckWith(cmd.OutOrStdout(), s.ToolsPath, nil, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with error code if a tool is missing")

	return cmd
}

// runCheckWith is the testable core of the check command.
func runCheckWith(w io.Writer, toolsPath string, exists tools.ExistsFunc, strict bool) error {
	statuses := tools.CheckTools(toolsPath, exists)

	where := toolsPath
	if where == "" {
		where = "default locations"
	}
	fmt.Fprintf(w, "🔍 Checking debugging tools in %s...\n\n", where)

	var missing int
	for _, st := range statuses {
		if st.Found {
			fmt.Fprintf(w, "  ✅ %s — %s\n", st.Name, st.Path)
		} else {
			fmt.Fprintf(w, "  ❌ %s — not found\n", st.Name)
			missing++
		}
	}

	fmt.Fprintln(w)
	if missing == 0 {
		if _, err := tools.Locate(toolsPath, exists); err != nil {
			fmt.Fprintf(w, "⚠️  %s and %s must be in the same directory.\n", tools.SrcTool, tools.PdbStr)
			missing++
		}
	}
	if missing > 0 {
		msg := fmt.Sprintf("%d problem(s) found. Use --tools-path to specify the installation path.", missing)
		if strict {
			return fmt.Errorf("%s", msg)
		}
		fmt.Fprintf(w, "⚠️  %s\n", msg)
		return nil
	}
	fmt.Fprintln(w, "✅ Debugging tools found.")
	return nil
}
