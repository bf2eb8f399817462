package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cbout22/srcindex/internal/config"
	"github.com/cbout22/srcindex/internal/provider"
)

// providerFlag is one provider option. set validates the raw value and
// stores it into the settings.
type providerFlag struct {
	name  string
	usage string
	set   func(s *config.Settings, value string) error
}

// providerCmd describes the subcommand of one provider.
type providerCmd struct {
	kind   provider.Kind
	short  string
	hidden bool
	flags  []providerFlag
}

var gitlabFlags = []providerFlag{
	{
		name:  "server-url",
		usage: "GitLab server URL, e.g. https://gitlab.example.com",
		set: func(s *config.Settings, v string) error {
			if _, err := config.ParseServerURL(v); err != nil {
				return err
			}
			s.GitLab.ServerURL = v
			return nil
		},
	},
	{
		name:  "downloader",
		usage: "How the debugger fetches files: direct, wget, curl, powershell (default \"curl\")",
		set: func(s *config.Settings, v string) error {
			d, err := config.ParseDownloader(v)
			if err != nil {
				return err
			}
			s.GitLab.Downloader = d
			return nil
		},
	},
	{
		name:  "target",
		usage: "Destination template of downloaded files",
		set: func(s *config.Settings, v string) error {
			s.GitLab.Target = v
			return nil
		},
	},
	{
		name:  "token",
		usage: "Access token written into the index (default \"" + provider.TokenPlaceholder + "\")",
		set: func(s *config.Settings, v string) error {
			s.GitLab.Token = v
			return nil
		},
	},
}

// providerCmdFor describes the subcommand of kind. The git provider records
// local repository paths only and is kept off the help output.
func providerCmdFor(kind provider.Kind) providerCmd {
	switch kind {
	case provider.GitLab:
		return providerCmd{
			kind:  kind,
			short: "Index sources hosted on a GitLab server",
			flags: gitlabFlags,
		}
	case provider.Git:
		return providerCmd{
			kind:   kind,
			short:  "Index sources by local repository path and commit",
			hidden: true,
		}
	}
	return providerCmd{kind: kind, short: "Index sources with the " + string(kind) + " provider"}
}

// setterValue keeps the raw flag text; it is applied through the flag's
// setter once the configuration file has been loaded.
type setterValue struct {
	raw string
}

var _ pflag.Value = (*setterValue)(nil)

func (v *setterValue) String() string       { return v.raw }
func (v *setterValue) Set(raw string) error { v.raw = raw; return nil }
func (v *setterValue) Type() string         { return "string" }

// newProviderCmd creates the indexing command of one provider.
// Usage: srcindex gitlab --server-url <url> [flags]
func newProviderCmd(pc providerCmd, opts *rootOptions, run indexFunc) *cobra.Command {
	var values []*setterValue

	cmd := &cobra.Command{
		Use:    string(pc.kind),
		Short:  pc.short,
		Hidden: pc.hidden,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			if err := applyProviderFlags(cmd, pc.flags, values, &s); err != nil {
				return err
			}
			return run(cmd, pc.kind, s)
		},
	}
	values = addProviderFlags(cmd, pc.flags)

	return cmd
}

func addProviderFlags(cmd *cobra.Command, flags []providerFlag) []*setterValue {
	values := make([]*setterValue, len(flags))
	for i, f := range flags {
		values[i] = &setterValue{}
		cmd.Flags().Var(values[i], f.name, f.usage)
	}
	return values
}

// applyProviderFlags stores the provider flags given on the command line.
func applyProviderFlags(cmd *cobra.Command, flags []providerFlag, values []*setterValue, s *config.Settings) error {
	for i, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		if err := f.set(s, values[i].raw); err != nil {
			return err
		}
	}
	return nil
}
