// Package tools drives the Debugging Tools for Windows programs that read
// source paths from symbol files and write the srcsrv stream into them.
package tools

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	SrcTool = "srctool.exe"
	PdbStr  = "pdbstr.exe"

	// StreamName is the symbol file stream holding the index.
	StreamName = "srcsrv"
)

// ErrNotFound is returned when the tools cannot be located.
var ErrNotFound = errors.New("debugging tools for Windows were not found; use --tools-path to specify the installation path")

// DefaultDirs are searched when no tools directory is configured.
var DefaultDirs = []string{
	`C:\Program Files (x86)\Windows Kits\10\Debuggers\x64`,
	`C:\Program Files (x86)\Windows Kits\10\Debuggers\x86`,
	`C:\Program Files\Debugging Tools for Windows (x64)`,
	`C:\Program Files (x86)\Debugging Tools for Windows (x86)`,
}

// ExistsFunc reports whether a regular file exists.
type ExistsFunc func(path string) bool

// FileExists is the ExistsFunc backed by the operating system.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Paths locates both tools.
type Paths struct {
	Dir     string
	SrcTool string
	PdbStr  string
}

// Locate finds the tools in dir. pdbstr.exe is looked up in dir and then in
// its srcsrv subdirectory; srctool.exe must sit next to it. An empty dir
// searches DefaultDirs.
func Locate(dir string, exists ExistsFunc) (Paths, error) {
	if exists == nil {
		exists = FileExists
	}
	if dir != "" {
		return locateIn(dir, exists)
	}
	for _, d := range DefaultDirs {
		if p, err := locateIn(d, exists); err == nil {
			return p, nil
		}
	}
	return Paths{}, ErrNotFound
}

func locateIn(dir string, exists ExistsFunc) (Paths, error) {
	for _, d := range []string{dir, filepath.Join(dir, "srcsrv")} {
		if !exists(filepath.Join(d, PdbStr)) {
			continue
		}
		if !exists(filepath.Join(d, SrcTool)) {
			return Paths{}, fmt.Errorf("%s: %w", d, ErrNotFound)
		}
		return Paths{
			Dir:     d,
			SrcTool: filepath.Join(d, SrcTool),
			PdbStr:  filepath.Join(d, PdbStr),
		}, nil
	}
	return Paths{}, fmt.Errorf("%s: %w", dir, ErrNotFound)
}

// Status describes one tool for the check command.
type Status struct {
	Name  string
	Path  string
	Found bool
}

// CheckTools reports where each tool was found. It reads state only through
// its arguments.
func CheckTools(dir string, exists ExistsFunc) []Status {
	if exists == nil {
		exists = FileExists
	}
	paths, err := Locate(dir, exists)
	if err == nil {
		return []Status{
			{Name: SrcTool, Path: paths.SrcTool, Found: true},
			{Name: PdbStr, Path: paths.PdbStr, Found: true},
		}
	}

	var dirs []string
	if dir != "" {
		dirs = []string{dir, filepath.Join(dir, "srcsrv")}
	} else {
		for _, d := range DefaultDirs {
			dirs = append(dirs, d, filepath.Join(d, "srcsrv"))
		}
	}
	statuses := make([]Status, 0, 2)
	for _, name := range []string{SrcTool, PdbStr} {
		st := Status{Name: name}
		for _, d := range dirs {
			if p := filepath.Join(d, name); exists(p) {
				st.Path, st.Found = p, true
				break
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Toolchain runs the located tools.
type Toolchain struct {
	paths  Paths
	runner Runner
	exists ExistsFunc
	log    zerolog.Logger
}

// New returns a toolchain for paths. A nil runner uses ExecRunner without a
// timeout.
func New(paths Paths, runner Runner, log zerolog.Logger) *Toolchain {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolchain{paths: paths, runner: runner, exists: FileExists, log: log}
}

// Paths returns the tool locations.
func (t *Toolchain) Paths() Paths { return t.paths }

// Check verifies that both tools are still present.
func (t *Toolchain) Check() error {
	for _, p := range []string{t.paths.SrcTool, t.paths.PdbStr} {
		if p == "" || !t.exists(p) {
			return ErrNotFound
		}
	}
	return nil
}

// ListSources returns the source paths recorded in pdb. srctool's exit code
// is the number of files, so it is not checked.
func (t *Toolchain) ListSources(ctx context.Context, pdb string) ([]string, error) {
	res, err := t.runner.Run(ctx, t.paths.SrcTool, "-r", pdb)
	if err != nil {
		return nil, fmt.Errorf("listing sources of %s: %w", pdb, err)
	}
	return splitLines(res.Stdout), nil
}

// WriteStream commits the stream file into pdb.
func (t *Toolchain) WriteStream(ctx context.Context, pdb, streamFile string) error {
	res, err := t.runner.Run(ctx, t.paths.PdbStr,
		"-w", "-p:"+pdb, "-s:"+StreamName, "-i:"+streamFile)
	if err != nil {
		return fmt.Errorf("writing %s stream to %s: %w", StreamName, pdb, err)
	}
	if res.ExitCode != 0 {
		t.log.Debug().
			Str("pdb", pdb).
			Int("exit_code", res.ExitCode).
			Bytes("stderr", res.Stderr).
			Msg("pdbstr failed")
		return fmt.Errorf("failed to write source server stream to %s (pdbstr exit code %d)", pdb, res.ExitCode)
	}
	return nil
}

func splitLines(out []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
