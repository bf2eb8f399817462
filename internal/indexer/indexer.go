// Package indexer embeds source retrieval recipes into symbol files.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbout22/srcindex/internal/downloader"
	"github.com/cbout22/srcindex/internal/provider"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// Toolchain reads source paths from symbol files and writes streams into
// them.
type Toolchain interface {
	Check() error
	ListSources(ctx context.Context, symbolFile string) ([]string, error)
	WriteStream(ctx context.Context, symbolFile, streamFile string) error
}

// Factory creates the provider of one run.
type Factory func() (provider.Provider, error)

// Indexer indexes symbol files with a single provider per run.
type Indexer struct {
	tools   Toolchain
	factory Factory
	filter  downloader.Filter
	log     zerolog.Logger
	now     func() time.Time

	// SourceRoot, when set, skips sources outside it. A relative root is
	// taken from the working directory.
	SourceRoot string
	// KeepGoing continues past symbol files that fail to index.
	KeepGoing bool
	// TempDir holds stream files until they are committed; empty means
	// the system default.
	TempDir string
}

// New creates an Indexer. A nil filter means downloader.Direct.
func New(tools Toolchain, factory Factory, filter downloader.Filter, log zerolog.Logger) *Indexer {
	if filter == nil {
		filter = downloader.Direct{}
	}
	return &Indexer{
		tools:   tools,
		factory: factory,
		filter:  filter,
		log:     log,
		now:     time.Now,
	}
}

// IndexResult holds the outcome of indexing a single symbol file.
type IndexResult struct {
	SymbolFile string
	// Sources is the number of source paths listed in the symbol file.
	Sources int
	// Indexed is the number of sources written to the stream.
	Indexed int
	Err     error
}

// Written reports whether a stream was committed.
func (r IndexResult) Written() bool {
	return r.Err == nil && r.Indexed > 0
}

// Stats summarizes a run.
type Stats struct {
	Results []IndexResult
}

// SymbolFiles is the number of symbol files processed.
func (s Stats) SymbolFiles() int { return len(s.Results) }

// Indexed is the number of symbol files that received a stream.
func (s Stats) Indexed() int {
	n := 0
	for _, r := range s.Results {
		if r.Written() {
			n++
		}
	}
	return n
}

// Failed is the number of symbol files that could not be indexed.
func (s Stats) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Run indexes every symbol file. Missing tools and provider errors are
// fatal. A symbol file that fails to index stops the run unless KeepGoing
// is set, in which case all failures are returned together at the end.
func (ix *Indexer) Run(ctx context.Context, symbolFiles []string) (Stats, error) {
	var stats Stats

	if err := ix.tools.Check(); err != nil {
		return stats, err
	}

	sourceRoot := ix.SourceRoot
	if sourceRoot != "" {
		abs, err := filepath.Abs(sourceRoot)
		if err != nil {
			return stats, fmt.Errorf("source root: %w", err)
		}
		sourceRoot = abs
	}

	p, err := ix.factory()
	if err != nil {
		return stats, err
	}
	defer func() {
		if err := p.Close(); err != nil {
			ix.log.Debug().Err(err).Msg("Failed to close repositories.")
		}
	}()

	header := downloader.Header(ix.filter, p)

	var failures []error
	for _, symbolFile := range symbolFiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		res := ix.indexSymbolFile(ctx, p, header, sourceRoot, symbolFile)
		stats.Results = append(stats.Results, res)
		if res.Err == nil {
			continue
		}
		if !ix.KeepGoing {
			return stats, res.Err
		}
		ix.log.Error().Err(res.Err).Str("symbol_file", symbolFile).Msg("Failed to index symbol file.")
		failures = append(failures, res.Err)
	}

	switch {
	case stats.SymbolFiles() == 0:
		ix.log.Warn().Msg("No symbol file found.")
	case stats.Indexed() == 0:
		ix.log.Warn().Msg("No symbol file indexed.")
	}

	return stats, errors.Join(failures...)
}

func (ix *Indexer) indexSymbolFile(ctx context.Context, p provider.Provider, header srcsrv.Variables, sourceRoot, symbolFile string) IndexResult {
	res := IndexResult{SymbolFile: symbolFile}
	name := filepath.Base(symbolFile)

	sources, err := ix.tools.ListSources(ctx, symbolFile)
	if err != nil {
		res.Err = err
		return res
	}
	res.Sources = len(sources)

	var records []srcsrv.Record
	for _, source := range sources {
		if !withinRoot(sourceRoot, source) {
			ix.log.Debug().Str("file", source).Msg("Source file outside of source root.")
			continue
		}
		info, ok := p.Resolve(source)
		if !ok {
			continue
		}
		records = append(records, downloader.Record(ix.filter, info))
	}
	res.Indexed = len(records)

	switch {
	case res.Sources == 0:
		ix.log.Warn().Str("symbol_file", name).Msg("Skipping symbol file. No source information available.")
		return res
	case res.Indexed == 0:
		ix.log.Warn().Str("symbol_file", name).Msg("Skipping symbol file. Source files unversioned.")
		return res
	}

	stream := &srcsrv.Stream{
		Version:   provider.LanguageVersion,
		VerCtrl:   p.Name(),
		DateTime:  ix.now(),
		Variables: header,
		Records:   records,
	}
	if err := ix.commit(ctx, symbolFile, stream); err != nil {
		res.Err = err
		return res
	}

	ix.log.Info().
		Str("symbol_file", name).
		Int("sources", res.Sources).
		Int("indexed", res.Indexed).
		Msg("Symbol file indexed.")
	return res
}

func (ix *Indexer) commit(ctx context.Context, symbolFile string, stream *srcsrv.Stream) error {
	tmp, err := stream.WriteTempFile(ix.TempDir)
	if err != nil {
		return fmt.Errorf("%s: %w", symbolFile, err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			ix.log.Debug().Err(err).Str("file", tmp).Msg("Failed to remove stream file.")
		}
	}()

	return ix.tools.WriteStream(ctx, symbolFile, tmp)
}

// withinRoot reports whether source lies below root; an empty root admits
// everything. Both must be absolute. The comparison is case-insensitive, as
// Windows paths are.
func withinRoot(root, source string) bool {
	if root == "" {
		return true
	}
	root = strings.TrimRight(filepath.Clean(root), `\/`)
	src := filepath.Clean(source)
	if len(src) <= len(root) || !strings.EqualFold(src[:len(root)], root) {
		return false
	}
	return os.IsPathSeparator(src[len(root)])
}
