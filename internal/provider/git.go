package provider

import (
	"path"
	"path/filepath"

	"github.com/cbout22/srcindex/internal/resolver"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// gitProvider records the local repository and commit of each file. It
// defines no retrieval command of its own and backs the hosted providers.
type gitProvider struct {
	git *resolver.GitResolver
}

func (p *gitProvider) Kind() Kind   { return Git }
func (p *gitProvider) Name() string { return "git" }
func (p *gitProvider) sealed()      {}

func (p *gitProvider) Variables() srcsrv.Variables {
	return srcsrv.Variables{}
}

// Resolve produces fields [repository root, commit].
func (p *gitProvider) Resolve(sourceFile string) (*FileInfo, bool) {
	gf, ok := p.git.Resolve(sourceFile)
	if !ok {
		return nil, false
	}
	root := gf.Repository.Root()
	return &FileInfo{
		FileName: gf.FileName,
		Fields:   []string{root, gf.Commit},
		Target:   path.Join(filepath.Base(root), gf.Commit, gf.RelPath),
		Git:      gf,
	}, true
}

func (p *gitProvider) Close() error {
	return p.git.Close()
}
