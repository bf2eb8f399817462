package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cbout22/srcindex/internal/config"
	"github.com/cbout22/srcindex/internal/downloader"
	"github.com/cbout22/srcindex/internal/indexer"
	"github.com/cbout22/srcindex/internal/logging"
	"github.com/cbout22/srcindex/internal/provider"
	"github.com/cbout22/srcindex/internal/tools"
)

// indexFunc runs an indexing command with fully merged settings.
type indexFunc func(cmd *cobra.Command, kind provider.Kind, s config.Settings) error

func runIndex(cmd *cobra.Command, kind provider.Kind, s config.Settings) error {
	cfg := logging.DefaultConfig()
	cfg.Level = s.LogLevel
	cfg.Output = cmd.ErrOrStderr()
	log := logging.NewWithComponent(cfg, "srcindex")

	paths, err := tools.Locate(s.ToolsPath, nil)
	if err != nil {
		return err
	}
	tc := tools.New(paths, tools.ExecRunner{Timeout: time.Duration(s.ToolTimeout)}, log)
	log.Debug().Str("path", tc.Paths().Dir).Msg("Using debugging tools.")

	_, err = runIndexWith(cmd.Context(), kind, s, tc, log)
	return err
}

// runIndexWith is the testable core of the provider commands.
func runIndexWith(ctx context.Context, kind provider.Kind, s config.Settings, tc indexer.Toolchain, log zerolog.Logger) (indexer.Stats, error) {
	if s.SourceRoot != "" {
		info, err := os.Stat(s.SourceRoot)
		if err != nil {
			return indexer.Stats{}, fmt.Errorf("source root: %w", err)
		}
		if !info.IsDir() {
			return indexer.Stats{}, fmt.Errorf("source root %s is not a directory", s.SourceRoot)
		}
	}

	opts, filter, err := providerSetup(kind, s)
	if err != nil {
		return indexer.Stats{}, err
	}

	symbolFiles, err := indexer.FindSymbolFiles(s.SymbolRoot, s.Recursive)
	if err != nil {
		return indexer.Stats{}, err
	}

	factory := func() (provider.Provider, error) {
		return provider.New(kind, opts, log)
	}

	ix := indexer.New(tc, factory, filter, log)
	ix.SourceRoot = s.SourceRoot
	ix.KeepGoing = s.KeepGoing

	stats, err := ix.Run(ctx, symbolFiles)
	if stats.SymbolFiles() > 0 {
		log.Info().
			Int("symbol_files", stats.SymbolFiles()).
			Int("indexed", stats.Indexed()).
			Int("failed", stats.Failed()).
			Msg("Indexing finished.")
	}
	return stats, err
}

// providerSetup derives the provider options and filter chain of a kind.
func providerSetup(kind provider.Kind, s config.Settings) (provider.Options, downloader.Filter, error) {
	switch kind {
	case provider.GitLab:
		if s.GitLab.ServerURL == "" {
			return provider.Options{}, nil, fmt.Errorf("gitlab: --server-url is required")
		}
		u, err := config.ParseServerURL(s.GitLab.ServerURL)
		if err != nil {
			return provider.Options{}, nil, err
		}
		d := s.GitLab.Downloader
		if d == "" {
			d = config.DefaultDownloader
		}
		filter, err := downloader.ForKind(d, s.GitLab.Target)
		if err != nil {
			return provider.Options{}, nil, err
		}
		return provider.Options{ServerURL: u, Token: s.GitLab.Token}, filter, nil
	default:
		return provider.Options{}, downloader.Direct{}, nil
	}
}
