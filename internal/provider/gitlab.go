package provider

import (
	"net/url"
	"path"
	"strings"

	"github.com/cbout22/srcindex/internal/resolver"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// TokenPlaceholder is the default value of GITLAB_SRCSRV_TOKEN. Debugger
// users put their own token in srcsrv.ini.
const TokenPlaceholder = "<placeholder>"

// Variable names of the GitLab header.
const (
	VarVerCtrl       = "SRCSRVVERCTRL"
	VarCommand       = "SRCSRVCMD"
	VarTarget        = "SRCSRVTRG"
	VarExtractTarget = "HTTP_EXTRACT_TARGET"
	VarGitLabAPI     = "GITLAB_API_V4_URL"
	VarGitLabToken   = "GITLAB_SRCSRV_TOKEN"
)

// gitlabProvider fetches files through the GitLab v4 repository files API.
type gitlabProvider struct {
	projects  *resolver.ProjectResolver
	serverURL *url.URL
	token     string
}

func (p *gitlabProvider) Kind() Kind   { return GitLab }
func (p *gitlabProvider) Name() string { return "http" }
func (p *gitlabProvider) sealed()      {}

// APIURL returns the v4 API base of the server.
func (p *gitlabProvider) APIURL() string {
	return APIURL(p.serverURL)
}

// APIURL returns the GitLab v4 API base below serverURL.
func APIURL(serverURL *url.URL) string {
	u := *serverURL
	u.RawQuery, u.Fragment = "", ""
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v4"
	u.RawPath = ""
	return u.String()
}

// Variables fields: var2 project id, var3 file path, var4 commit.
func (p *gitlabProvider) Variables() srcsrv.Variables {
	return srcsrv.Variables{
		srcsrv.Literal(VarVerCtrl, p.Name()),
		srcsrv.Literal(VarCommand, ""),
		srcsrv.Template(VarTarget, "%"+VarExtractTarget+"%"),
		srcsrv.Literal(VarGitLabAPI, p.APIURL()),
		srcsrv.Literal(VarGitLabToken, p.token),
		srcsrv.Template(VarExtractTarget,
			"%"+VarGitLabAPI+"%/projects/%var2%/repository/files/%var3%/raw?ref=%var4%&private_token=%"+VarGitLabToken+"%"),
	}
}

// Resolve produces fields [escaped project id, escaped file path, commit].
func (p *gitlabProvider) Resolve(sourceFile string) (*FileInfo, bool) {
	pf, ok := p.projects.Resolve(sourceFile)
	if !ok {
		return nil, false
	}
	return &FileInfo{
		FileName: pf.FileName,
		Fields: []string{
			escapeDataString(pf.ProjectID),
			escapeDataString(pf.RelPath),
			pf.Commit,
		},
		Target:  path.Join(pf.ProjectID, pf.Commit, pf.RelPath),
		Git:     pf.GitFile,
		Project: pf,
	}, true
}

// escapeDataString percent-encodes everything outside the RFC 3986
// unreserved set, so reserved characters such as '+' and '&' survive the
// files API path.
func escapeDataString(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (p *gitlabProvider) Close() error {
	return p.projects.Close()
}
