package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Downloader selects how the debugger fetches files whose URL it cannot
// retrieve directly.
type Downloader string

const (
	DownloaderDirect     Downloader = "direct"
	DownloaderWget       Downloader = "wget"
	DownloaderCurl       Downloader = "curl"
	DownloaderPowerShell Downloader = "powershell"
)

// DefaultDownloader ships with every supported Windows version.
const DefaultDownloader = DownloaderCurl

// ValidDownloaders returns all supported downloaders.
func ValidDownloaders() []Downloader {
	return []Downloader{DownloaderDirect, DownloaderWget, DownloaderCurl, DownloaderPowerShell}
}

// IsValid checks whether the downloader is one of the known kinds.
func (d Downloader) IsValid() bool {
	switch d {
	case DownloaderDirect, DownloaderWget, DownloaderCurl, DownloaderPowerShell:
		return true
	}
	return false
}

// ParseDownloader parses a downloader name case-insensitively.
func ParseDownloader(raw string) (Downloader, error) {
	d := Downloader(strings.ToLower(strings.TrimSpace(raw)))
	if !d.IsValid() {
		return "", fmt.Errorf("invalid downloader %q: must be one of %v", raw, ValidDownloaders())
	}
	return d, nil
}

// ParseServerURL parses a hosting server URL. Only http and https servers
// are accepted.
func ParseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return u, nil
}

// Duration is a time.Duration written as a string ("90s", "5m") in the
// config file.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
