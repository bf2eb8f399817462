package resolver

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// gitRepository is the go-git backed Repository.
type gitRepository struct {
	root string
	repo *git.Repository

	// tree of the last commit looked up by Contains.
	treeCommit string
	tree       *object.Tree
}

var _ Repository = (*gitRepository)(nil)

// OpenGit opens the git repository rooted at root. A .git file pointing at a
// separate git directory (worktrees, submodules) is followed.
func OpenGit(root string) (Repository, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", root, err)
	}
	return &gitRepository{root: root, repo: repo}, nil
}

func (r *gitRepository) Root() string { return r.root }

func (r *gitRepository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD of %s: %w", r.root, err)
	}
	return ref.Hash().String(), nil
}

func (r *gitRepository) Contains(commit, relPath string) (bool, error) {
	if r.tree == nil || r.treeCommit != commit {
		c, err := r.repo.CommitObject(plumbing.NewHash(commit))
		if err != nil {
			return false, fmt.Errorf("reading commit %s: %w", commit, err)
		}
		tree, err := c.Tree()
		if err != nil {
			return false, fmt.Errorf("reading tree of %s: %w", commit, err)
		}
		r.tree, r.treeCommit = tree, commit
	}

	entry, err := r.tree.FindEntry(relPath)
	switch {
	case errors.Is(err, object.ErrEntryNotFound),
		errors.Is(err, object.ErrDirectoryNotFound),
		errors.Is(err, object.ErrFileNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return entry.Mode.IsFile(), nil
}

func (r *gitRepository) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// Close releases pack files held open by the object storage.
func (r *gitRepository) Close() error {
	r.tree = nil
	if c, ok := r.repo.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
