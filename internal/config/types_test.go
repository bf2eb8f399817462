package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDownloaderIsValid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input Downloader
		want  bool
	}{
		{DownloaderDirect, true},
		{DownloaderWget, true},
		{DownloaderCurl, true},
		{DownloaderPowerShell, true},
		{"ftp", false},
		{"", false},
		{"WGET", false},
	}
	for _, tc := range cases {
		if got := tc.input.IsValid(); got != tc.want {
			t.Errorf("Downloader(%q).IsValid() = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseDownloader(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input   string
		want    Downloader
		wantErr bool
	}{
		{"wget", DownloaderWget, false},
		{" PowerShell ", DownloaderPowerShell, false},
		{"Curl", DownloaderCurl, false},
		{"bits", "", true},
	}
	for _, tc := range cases {
		got, err := ParseDownloader(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseDownloader(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDownloader(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseServerURL(t *testing.T) {
	t.Parallel()
	valid := []string{
		"https://gitlab.example.com",
		"http://gitlab.local:8080/gitlab/",
	}
	for _, raw := range valid {
		if _, err := ParseServerURL(raw); err != nil {
			t.Errorf("ParseServerURL(%q): unexpected error: %v", raw, err)
		}
	}

	invalid := []string{
		"gitlab.example.com",
		"ftp://gitlab.example.com",
		"https://",
		"://bad",
	}
	for _, raw := range invalid {
		if _, err := ParseServerURL(raw); err == nil {
			t.Errorf("ParseServerURL(%q): expected error, got nil", raw)
		}
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	s, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load(missing): unexpected error: %v", err)
	}
	if s.SymbolRoot != "." || s.GitLab.Downloader != DefaultDownloader {
		t.Errorf("Load(missing) = %+v, want defaults", s)
	}
	if time.Duration(s.ToolTimeout) != DefaultToolTimeout {
		t.Errorf("ToolTimeout = %v, want %v", time.Duration(s.ToolTimeout), DefaultToolTimeout)
	}

	if _, err := Load(path, true); err == nil {
		t.Error("Load(missing, required): expected error, got nil")
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	t.Parallel()

	content := `tools_path = 'C:\Debuggers\x64'
recursive = true
tool_timeout = "90s"
log_level = "debug"

[gitlab]
server_url = "https://gitlab.example.com"
downloader = "wget"
token = "<token>"
`
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if s.ToolsPath != `C:\Debuggers\x64` {
		t.Errorf("ToolsPath = %q", s.ToolsPath)
	}
	if !s.Recursive {
		t.Error("Recursive = false, want true")
	}
	if time.Duration(s.ToolTimeout) != 90*time.Second {
		t.Errorf("ToolTimeout = %v, want 90s", time.Duration(s.ToolTimeout))
	}
	if s.SymbolRoot != "." {
		t.Errorf("SymbolRoot = %q, want default %q", s.SymbolRoot, ".")
	}
	if s.GitLab.ServerURL != "https://gitlab.example.com" || s.GitLab.Downloader != DownloaderWget || s.GitLab.Token != "<token>" {
		t.Errorf("GitLab = %+v", s.GitLab)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte("tool_timeout = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("Load(invalid duration): expected error, got nil")
	}
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	s := Default()
	s.GitLab.ServerURL = "https://gitlab.example.com"
	s.KeepGoing = true

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestSettings_Validate(t *testing.T) {
	t.Parallel()

	s := Default()
	s.GitLab.Downloader = "bits"
	if err := s.Validate(); err == nil {
		t.Error("Validate(bad downloader): expected error, got nil")
	}

	s = Default()
	s.ToolTimeout = Duration(-time.Second)
	if err := s.Validate(); err == nil {
		t.Error("Validate(negative timeout): expected error, got nil")
	}
}
