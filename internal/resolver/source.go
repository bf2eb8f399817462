package resolver

// Repository is an open handle to a repository's on-disk metadata.
type Repository interface {
	// Root returns the working tree root the handle was opened for.
	Root() string

	// Head resolves the tip commit of the checked-out reference.
	Head() (string, error)

	// Contains reports whether relPath (slash separated) is tracked in commit.
	Contains(commit, relPath string) (bool, error)

	// RemoteURL returns the first URL of the named remote, or "" when the
	// remote is not configured.
	RemoteURL(name string) (string, error)

	// Close releases the handle.
	Close() error
}

// Opener opens the repository whose working tree is rooted at root.
type Opener func(root string) (Repository, error)
