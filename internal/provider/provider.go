// Package provider turns resolved source files into source server retrieval
// recipes: a header of variables shared by every file, and the per-file
// fields those variables reference as %var2%, %var3%, ...
package provider

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/cbout22/srcindex/internal/resolver"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// LanguageVersion is the srcsrv language version the providers emit.
const LanguageVersion = 2

// Kind tags a provider variant.
type Kind string

const (
	Git    Kind = "git"
	GitLab Kind = "gitlab"
)

// FileInfo is the retrieval record of one source file. It is immutable once
// created.
type FileInfo struct {
	// FileName is the path recorded in the symbol file (var1).
	FileName string
	// Fields are var2, var3, ... in provider order.
	Fields []string
	// Target is a slash-separated path that identifies this file revision,
	// used by downloaders to place fetched files.
	Target string

	// Git is set for every variant; Project only for hosted providers.
	Git     *resolver.GitFile
	Project *resolver.ProjectFile
}

// Record converts the info to a stream record with the given fields.
func (f *FileInfo) Record(fields []string) srcsrv.Record {
	return srcsrv.Record{FileName: f.FileName, Fields: fields}
}

// Provider is implemented by the variants in this package only.
type Provider interface {
	Kind() Kind
	// Name is the VERCTRL value of the stream header.
	Name() string
	Variables() srcsrv.Variables
	Resolve(sourceFile string) (*FileInfo, bool)
	// Close releases the repository handles cached while resolving.
	Close() error

	sealed()
}

// Options configures provider construction.
type Options struct {
	// ServerURL is the hosting server, required for GitLab.
	ServerURL *url.URL
	// Token is written as the value of the token variable. Debugger users
	// override it locally; it defaults to TokenPlaceholder.
	Token string
	// Opener opens repositories; nil means resolver.OpenGit.
	Opener resolver.Opener
}

// New creates a provider with fresh caches. Each indexing run uses its own
// provider and closes it when done.
func New(kind Kind, opts Options, log zerolog.Logger) (Provider, error) {
	log = log.With().Str("provider", string(kind)).Logger()
	git := resolver.NewGitResolver(log, opts.Opener)

	switch kind {
	case Git:
		return &gitProvider{git: git}, nil
	case GitLab:
		if opts.ServerURL == nil || opts.ServerURL.Host == "" {
			return nil, fmt.Errorf("gitlab provider: server URL is required")
		}
		token := opts.Token
		if token == "" {
			token = TokenPlaceholder
		}
		return &gitlabProvider{
			projects:  resolver.NewProjectResolver(git, opts.ServerURL.Hostname(), log),
			serverURL: opts.ServerURL,
			token:     token,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", kind)
	}
}

// Kinds lists the provider variants.
func Kinds() []Kind {
	return []Kind{Git, GitLab}
}
