package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbout22/srcindex/internal/config"
	"github.com/cbout22/srcindex/internal/logging"
	"github.com/cbout22/srcindex/internal/provider"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	toolsPath   string
	sourceRoot  string
	symbolRoot  string
	recursive   bool
	logLevel    string
	toolTimeout time.Duration
	keepGoing   bool
}

// NewRootCmd creates the top-level `srcindex` command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(runIndex)
}

func newRootCmd(run indexFunc) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "srcindex",
		Short: "Embed source server information into PDB files",
		Long: `srcindex records, inside each PDB symbol file, how a debugger can fetch the
exact revision of every source file the binary was built from.

Sources are identified through their git repository. Choose a provider
subcommand to select where the debugger retrieves them from.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Configuration file")
	pf.StringVar(&opts.toolsPath, "tools-path", "", "Debugging Tools for Windows installation path")
	pf.StringVar(&opts.sourceRoot, "source-root", "", "Source files root path")
	pf.StringVar(&opts.symbolRoot, "symbol-root", "", "Symbol files root path (default \".\")")
	pf.BoolVar(&opts.recursive, "recursive", false, "Search symbol files recursively")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default \"info\")")
	pf.DurationVar(&opts.toolTimeout, "tool-timeout", config.DefaultToolTimeout, "Timeout of each debugging tool invocation")
	pf.BoolVar(&opts.keepGoing, "keep-going", false, "Continue with the next symbol file when one fails to index")

	for _, kind := range provider.Kinds() {
		root.AddCommand(newProviderCmd(providerCmdFor(kind), opts, run))
	}
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newInitCmd(opts))

	return root
}

// loadSettings reads the configuration file and applies the persistent
// flags given on the command line on top of it.
func loadSettings(cmd *cobra.Command, opts *rootOptions) (config.Settings, error) {
	return mergeSettings(cmd, opts, cmd.Flags().Changed("config"))
}

// mergeSettings is loadSettings with an explicit choice of whether the
// configuration file must exist.
func mergeSettings(cmd *cobra.Command, opts *rootOptions, required bool) (config.Settings, error) {
	flags := cmd.Flags()

	s, err := config.Load(opts.configPath, required)
	if err != nil {
		return s, err
	}

	if flags.Changed("tools-path") {
		s.ToolsPath = opts.toolsPath
	}
	if flags.Changed("source-root") {
		s.SourceRoot = opts.sourceRoot
	}
	if flags.Changed("symbol-root") {
		s.SymbolRoot = opts.symbolRoot
	}
	if flags.Changed("recursive") {
		s.Recursive = opts.recursive
	}
	if flags.Changed("log-level") {
		s.LogLevel = opts.logLevel
	}
	if flags.Changed("tool-timeout") {
		s.ToolTimeout = config.Duration(opts.toolTimeout)
	}
	if flags.Changed("keep-going") {
		s.KeepGoing = opts.keepGoing
	}

	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
