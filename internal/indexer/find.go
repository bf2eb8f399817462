package indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SymbolFileExt is matched case-insensitively.
const SymbolFileExt = ".pdb"

// FindSymbolFiles lists the symbol files in root, descending into
// subdirectories when recursive is set. Results are in lexical order.
func FindSymbolFiles(root string, recursive bool) ([]string, error) {
	if root == "" {
		root = "."
	}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("reading symbol root: %w", err)
		}
		var files []string
		for _, e := range entries {
			if isSymbolFile(e) {
				files = append(files, filepath.Join(root, e.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if isSymbolFile(d) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching symbol root: %w", err)
	}
	return files, nil
}

func isSymbolFile(d fs.DirEntry) bool {
	return d.Type().IsRegular() && strings.EqualFold(filepath.Ext(d.Name()), SymbolFileExt)
}
