package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "srcindex.toml"

// DefaultToolTimeout bounds every srctool/pdbstr invocation.
const DefaultToolTimeout = 5 * time.Minute

// Settings is the full srcindex.toml file. Command-line flags override it.
type Settings struct {
	// ToolsPath is the Debugging Tools for Windows directory.
	ToolsPath string `toml:"tools_path,omitempty"`
	// SourceRoot restricts indexing to sources below it when set.
	SourceRoot string `toml:"source_root,omitempty"`
	// SymbolRoot is searched for *.pdb files; defaults to ".".
	SymbolRoot  string   `toml:"symbol_root,omitempty"`
	Recursive   bool     `toml:"recursive,omitempty"`
	KeepGoing   bool     `toml:"keep_going,omitempty"`
	ToolTimeout Duration `toml:"tool_timeout,omitempty"`
	LogLevel    string   `toml:"log_level,omitempty"`

	GitLab GitLab `toml:"gitlab"`
}

// GitLab holds the gitlab provider settings.
type GitLab struct {
	ServerURL  string     `toml:"server_url,omitempty"`
	Downloader Downloader `toml:"downloader,omitempty"`
	// Target is the downloader destination template.
	Target string `toml:"target,omitempty"`
	Token  string `toml:"token,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		SymbolRoot:  ".",
		ToolTimeout: Duration(DefaultToolTimeout),
		LogLevel:    "info",
		GitLab: GitLab{
			Downloader: DefaultDownloader,
		},
	}
}

// Load reads and parses a settings file on top of Default. If the file does
// not exist and required is false it returns the defaults (no error).
func Load(path string, required bool) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return s, nil
		}
		return s, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to path.
func (s Settings) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Validate checks the values shared by every provider.
func (s Settings) Validate() error {
	if s.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must not be negative")
	}
	if s.GitLab.Downloader != "" && !s.GitLab.Downloader.IsValid() {
		return fmt.Errorf("invalid downloader %q: must be one of %v", s.GitLab.Downloader, ValidDownloaders())
	}
	return nil
}
