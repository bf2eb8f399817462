package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// originRemote is the remote whose URL identifies the hosted project.
const originRemote = "origin"

// ProjectFile is a git-resolved source file that belongs to a project on the
// hosting server.
type ProjectFile struct {
	*GitFile
	ProjectID string
}

// ProjectResolver wraps a GitResolver and maps each repository to a project
// on the configured hosting server through its origin URL.
type ProjectResolver struct {
	git  *GitResolver
	host string
	log  zerolog.Logger

	// projects caches the project id per repository root; "" marks a
	// repository that has no project on the server.
	projects map[string]string
}

// NewProjectResolver creates a resolver for projects hosted on serverHost.
func NewProjectResolver(git *GitResolver, serverHost string, log zerolog.Logger) *ProjectResolver {
	return &ProjectResolver{
		git:      git,
		host:     serverHost,
		log:      log,
		projects: make(map[string]string),
	}
}

// Resolve resolves sourceFile to its git identity and hosted project.
func (r *ProjectResolver) Resolve(sourceFile string) (*ProjectFile, bool) {
	gf, ok := r.git.Resolve(sourceFile)
	if !ok {
		return nil, false
	}
	projectID, ok := r.ProjectID(gf.Repository)
	if !ok {
		return nil, false
	}
	return &ProjectFile{GitFile: gf, ProjectID: projectID}, true
}

// ProjectID returns the project identifier of repo. The result, including a
// failure, is cached per repository root and warned about once.
func (r *ProjectResolver) ProjectID(repo Repository) (string, bool) {
	root := repo.Root()
	if id, ok := r.projects[root]; ok {
		return id, id != ""
	}

	id := r.lookup(repo)
	r.projects[root] = id
	return id, id != ""
}

func (r *ProjectResolver) lookup(repo Repository) string {
	log := r.log.With().Str("repository", repo.Root()).Logger()

	origin, err := repo.RemoteURL(originRemote)
	if err != nil || origin == "" {
		log.Warn().Err(err).Msg("Could not find project ID for repository: no origin remote.")
		return ""
	}

	host, path, ok := ParseRemoteURL(origin)
	if !ok {
		log.Warn().Str("url", origin).Msg("Failed to parse origin URL for repository.")
		return ""
	}

	if !strings.EqualFold(host, r.host) || !strings.HasSuffix(path, ".git") {
		log.Warn().Str("url", origin).Str("server", r.host).Msg("Could not find project ID for repository.")
		return ""
	}

	id := strings.TrimSuffix(path, ".git")
	id = strings.TrimLeft(id, "/")
	if id == "" {
		log.Warn().Str("url", origin).Msg("Could not find project ID for repository.")
		return ""
	}
	return id
}

// Close releases the wrapped resolver's repository handles.
func (r *ProjectResolver) Close() error {
	clear(r.projects)
	return r.git.Close()
}

// scpLikeRe matches [user@]host:path remotes.
var scpLikeRe = regexp.MustCompile(`^(?:[^@/]+@)?([^:/]+):(.+)$`)

// ParseRemoteURL splits a git remote into host and path. Absolute URLs
// (https://host/path, ssh://git@host:22/path) are tried first, then the
// SCP-like form git@host:path.
func ParseRemoteURL(raw string) (host, path string, ok bool) {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Hostname(), u.Path, true
	}

	if m := scpLikeRe.FindStringSubmatch(raw); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}
