// Package resolver maps source files to the version-control identity they
// were built from: the repository, the root-relative path and the commit.
package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cbout22/srcindex/internal/pathcase"
)

// gitMarker is the directory (or file, for worktrees) marking a repository root.
const gitMarker = ".git"

// GitFile is a source file resolved against a git repository.
type GitFile struct {
	// FileName is the path as recorded in the symbol file.
	FileName string
	// Path is the canonical on-disk path.
	Path       string
	Repository Repository
	// RelPath is the slash-separated path relative to the repository root.
	RelPath string
	Commit  string
}

// GitResolver resolves source files to git identities. Repository handles
// are cached per root for the lifetime of the resolver; Close releases them.
type GitResolver struct {
	log   zerolog.Logger
	paths *pathcase.Canonicalizer
	open  Opener
	repos map[string]Repository
	// heads caches the tip commit per root; "" marks a root whose HEAD
	// cannot be resolved.
	heads map[string]string
}

// NewGitResolver creates a resolver. A nil open means OpenGit.
func NewGitResolver(log zerolog.Logger, open Opener) *GitResolver {
	if open == nil {
		open = OpenGit
	}
	return &GitResolver{
		log:   log,
		paths: pathcase.New(nil),
		open:  open,
		repos: make(map[string]Repository),
		heads: make(map[string]string),
	}
}

// Resolve returns the git identity of sourceFile. The commit is always the
// tip of the checked-out reference. Files that cannot be resolved are
// skipped: ok is false and the reason is logged.
func (r *GitResolver) Resolve(sourceFile string) (*GitFile, bool) {
	path, err := r.paths.Canonicalize(sourceFile)
	if err != nil {
		if errors.Is(err, pathcase.ErrRelative) {
			r.log.Warn().Str("file", sourceFile).Msg("Relative source file paths are not supported.")
		} else {
			r.log.Debug().Err(err).Str("file", sourceFile).Msg("source file not found on disk")
		}
		return nil, false
	}

	root, ok := FindRoot(filepath.Dir(path))
	if !ok {
		r.log.Debug().Str("file", path).Msg("source file is not inside a git repository")
		return nil, false
	}

	repo := r.repository(root)
	if repo == nil {
		return nil, false
	}

	commit := r.head(root, repo)
	if commit == "" {
		return nil, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		r.log.Debug().Str("file", path).Str("repository", root).Msg("source file is outside the repository root")
		return nil, false
	}
	rel = filepath.ToSlash(rel)

	tracked, err := repo.Contains(commit, rel)
	if err != nil {
		r.log.Warn().Err(err).Str("file", rel).Msg("cannot read the commit tree")
		return nil, false
	}
	if !tracked {
		r.log.Info().Str("file", rel).Msg("Untracked file will not be indexed.")
		return nil, false
	}

	return &GitFile{
		FileName:   sourceFile,
		Path:       path,
		Repository: repo,
		RelPath:    rel,
		Commit:     commit,
	}, true
}

// repository returns the cached handle for root, opening it on first use.
// Failed opens are cached as nil so they are reported once.
func (r *GitResolver) repository(root string) Repository {
	if repo, ok := r.repos[root]; ok {
		return repo
	}
	repo, err := r.open(root)
	if err != nil {
		r.log.Warn().Err(err).Str("repository", root).Msg("cannot open repository")
		repo = nil
	}
	r.repos[root] = repo
	return repo
}

// head returns the cached tip commit of root. A failure is cached too, so
// it is reported once.
func (r *GitResolver) head(root string, repo Repository) string {
	if commit, ok := r.heads[root]; ok {
		return commit
	}
	commit, err := repo.Head()
	if err != nil {
		r.log.Warn().Err(err).Str("repository", root).Msg("cannot resolve the current commit")
		commit = ""
	}
	r.heads[root] = commit
	return commit
}

// Close releases every cached repository handle and empties the cache.
func (r *GitResolver) Close() error {
	var errs []error
	for root, repo := range r.repos {
		if repo == nil {
			continue
		}
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
			r.log.Debug().Err(err).Str("repository", root).Msg("closing repository")
		}
	}
	clear(r.repos)
	clear(r.heads)
	return errors.Join(errs...)
}

// FindRoot walks from dir towards the filesystem root and returns the first
// directory containing a .git entry.
func FindRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, gitMarker)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
