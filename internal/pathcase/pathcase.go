// Package pathcase recovers the exact on-disk spelling of a path.
//
// PDBs sometimes record source paths lowercased. Git trees are case
// sensitive, so a path must carry the casing stored on disk before it can be
// looked up in a commit.
package pathcase

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrRelative is returned for paths that are not absolute.
	ErrRelative = errors.New("relative paths are not supported")
	// ErrNotFound is returned when a path component has no matching entry.
	ErrNotFound = errors.New("path not found")
	// ErrAmbiguous is returned when a component matches several entries
	// case-insensitively and none of them exactly.
	ErrAmbiguous = errors.New("path is ambiguous")
)

// ReadDirFunc lists a directory.
type ReadDirFunc func(name string) ([]fs.DirEntry, error)

// Canonicalizer resolves paths against a directory lister.
type Canonicalizer struct {
	readDir ReadDirFunc
}

// New returns a Canonicalizer. A nil readDir means os.ReadDir.
func New(readDir ReadDirFunc) *Canonicalizer {
	if readDir == nil {
		readDir = os.ReadDir
	}
	return &Canonicalizer{readDir: readDir}
}

// Canonicalize resolves an absolute file path using the real filesystem.
func Canonicalize(path string) (string, error) {
	return New(nil).Canonicalize(path)
}

// Canonicalize returns path with every component spelled as stored in its
// parent directory. The volume root is normalized too (drive letters are
// upper-cased). The final component must name a file, not a directory.
func (c *Canonicalizer) Canonicalize(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%s: %w", path, ErrRelative)
	}

	path = filepath.Clean(path)
	vol := filepath.VolumeName(path)
	rest := strings.TrimLeft(path[len(vol):], `\/`)
	if rest == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	cur := canonicalVolume(vol) + string(filepath.Separator)
	parts := strings.Split(rest, string(filepath.Separator))
	for i, part := range parts {
		entries, err := c.readDir(cur)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("%s: %w", path, ErrNotFound)
			}
			return "", fmt.Errorf("listing %s: %w", cur, err)
		}

		leaf := i == len(parts)-1
		name, err := matchEntry(entries, part, leaf)
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		cur = filepath.Join(cur, name)
	}
	return cur, nil
}

// matchEntry picks the directory entry spelled like name. An exact match
// wins; otherwise exactly one case-insensitive match is required.
func matchEntry(entries []fs.DirEntry, name string, leaf bool) (string, error) {
	var folded []string
	for _, e := range entries {
		if !kindMatches(e, leaf) {
			continue
		}
		if e.Name() == name {
			return name, nil
		}
		if strings.EqualFold(e.Name(), name) {
			folded = append(folded, e.Name())
		}
	}

	switch len(folded) {
	case 0:
		return "", ErrNotFound
	case 1:
		return folded[0], nil
	default:
		return "", ErrAmbiguous
	}
}

// kindMatches accepts files for the leaf and directories (or links to them)
// for every other component.
func kindMatches(e fs.DirEntry, leaf bool) bool {
	if e.Type()&fs.ModeSymlink != 0 {
		return true
	}
	return e.IsDir() != leaf
}

func canonicalVolume(vol string) string {
	if len(vol) == 2 && vol[1] == ':' {
		return strings.ToUpper(vol)
	}
	return vol
}
