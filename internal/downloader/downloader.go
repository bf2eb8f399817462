package downloader

import (
	"fmt"

	"github.com/cbout22/srcindex/internal/config"
	"github.com/cbout22/srcindex/internal/provider"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// Variable names introduced by downloaders.
const (
	VarRawURL     = "RAWURL"
	VarTargetFile = "TRGFILE"
)

// DefaultTarget places fetched files below the debugger's source cache
// (%targ%), at the path given by the downloader's own leading field.
const DefaultTarget = `%targ%\%fnbksl%(%var2%)`

// CommandFunc renders the fetch command from the names of the variables
// holding the URL and the destination file.
type CommandFunc func(urlVar, targetVar string) string

// Downloader routes retrieval through an external program. It inserts one
// leading field (the file's Target), so every placeholder of the inner chain
// at or after FirstField moves up by one.
type Downloader struct {
	next    Filter
	target  string
	command CommandFunc
}

var _ Filter = (*Downloader)(nil)

// New wraps next. target is the destination template; %var2% in it refers
// to the inserted field. An empty target means DefaultTarget.
func New(next Filter, target string, command CommandFunc) *Downloader {
	if next == nil {
		next = Direct{}
	}
	if target == "" {
		target = DefaultTarget
	}
	return &Downloader{next: next, target: target, command: command}
}

// shift is the renumbering of one Downloader layer: it maps an index in the
// inner filter's records to the index in this filter's records. Placeholder
// is shift composed over the whole chain, and Variables applies shift to the
// inner header, so a provider placeholder N ends up as Placeholder(N).
func shift(index int) int {
	if index >= FirstField {
		return index + 1
	}
	return index
}

// Placeholder maps a provider field index to its index in the final records.
func (d *Downloader) Placeholder(index int) int {
	return shift(d.next.Placeholder(index))
}

// Variables moves the extraction URL into RAWURL, points SRCSRVTRG at the
// target file and sets the fetch command. When an inner downloader already
// did so, the command and target are replaced by this one's.
func (d *Downloader) Variables(vars srcsrv.Variables) srcsrv.Variables {
	vars = srcsrv.RenumberVariables(d.next.Variables(vars), shift)

	if rest, extract, ok := vars.Delete(provider.VarExtractTarget); ok {
		vars = rest.Set(srcsrv.Variable{Name: VarRawURL, Value: extract.Value, Template: extract.Template})
	} else if _, ok := vars.Get(VarRawURL); !ok {
		return vars
	}

	vars = vars.Set(srcsrv.Template(VarTargetFile, d.target))
	vars = vars.Set(srcsrv.Template(provider.VarTarget, "%"+VarTargetFile+"%"))
	vars = vars.Set(srcsrv.Template(provider.VarCommand, d.command(VarRawURL, VarTargetFile)))
	return vars
}

func (d *Downloader) Fields(file *provider.FileInfo) []string {
	inner := d.next.Fields(file)
	out := make([]string, 0, len(inner)+1)
	out = append(out, file.Target)
	return append(out, inner...)
}

// Wget fetches with GNU wget.
func Wget(urlVar, targetVar string) string {
	return fmt.Sprintf(`wget -O "%%%s%%" "%%%s%%"`, targetVar, urlVar)
}

// Curl fetches with curl, which ships with Windows 10 and later.
func Curl(urlVar, targetVar string) string {
	return fmt.Sprintf(`curl -sSfL --create-dirs -o "%%%s%%" "%%%s%%"`, targetVar, urlVar)
}

// PowerShell fetches with System.Net.WebClient. Older .NET runtimes decode
// %2F in URLs before sending them, which breaks GitLab file paths.
func PowerShell(urlVar, targetVar string) string {
	return fmt.Sprintf(
		`powershell -NoProfile -Command "(New-Object System.Net.WebClient).DownloadFile('%%%s%%', '%%%s%%')"`,
		urlVar, targetVar)
}

// ForKind builds the filter chain for a configured downloader.
func ForKind(kind config.Downloader, target string) (Filter, error) {
	switch kind {
	case config.DownloaderDirect:
		return Direct{}, nil
	case config.DownloaderWget:
		return New(Direct{}, target, Wget), nil
	case config.DownloaderCurl:
		return New(Direct{}, target, Curl), nil
	case config.DownloaderPowerShell:
		return New(Direct{}, target, PowerShell), nil
	default:
		return nil, fmt.Errorf("unknown downloader %q (valid: %v)", kind, config.ValidDownloaders())
	}
}
