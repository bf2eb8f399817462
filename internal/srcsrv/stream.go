// Package srcsrv renders source server streams, the text section that
// pdbstr embeds into a PDB under the name "srcsrv".
package srcsrv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// IndexVersion is the INDEXVERSION written to every stream.
const IndexVersion = 2

// DateTimeLayout formats the DATETIME header line.
const DateTimeLayout = "2006/01/02 15:04:05"

const (
	iniMarker       = "SRCSRV: ini ------------------------------------------------"
	variablesMarker = "SRCSRV: variables ------------------------------------------"
	filesMarker     = "SRCSRV: source files ---------------------------------------"
	endMarker       = "SRCSRV: end ------------------------------------------------"
)

// Escape doubles every percent sign. The debugger reads a single %name% as a
// substitution marker and %% as a literal percent sign.
func Escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// Record is one line of the source files section: the path recorded in the
// PDB (var1) followed by the fields var2, var3, ...
type Record struct {
	FileName string
	Fields   []string
}

// String renders the record with every value escaped.
func (r Record) String() string {
	parts := make([]string, 0, len(r.Fields)+1)
	parts = append(parts, Escape(r.FileName))
	for _, f := range r.Fields {
		parts = append(parts, Escape(f))
	}
	return strings.Join(parts, "*")
}

// Stream is a complete srcsrv stream.
type Stream struct {
	// Version is the srcsrv language version (VERSION=).
	Version   int
	VerCtrl   string
	DateTime  time.Time
	Variables Variables
	Records   []Record
}

// WriteTo writes the stream text to w.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	cw.line(iniMarker)
	cw.line(fmt.Sprintf("VERSION=%d", s.Version))
	cw.line(fmt.Sprintf("INDEXVERSION=%d", IndexVersion))
	cw.line("VERCTRL=" + Escape(s.VerCtrl))
	cw.line("DATETIME=" + s.DateTime.Format(DateTimeLayout))
	cw.line(variablesMarker)
	for _, v := range s.Variables {
		cw.line(v.Name + "=" + v.Output())
	}
	cw.line(filesMarker)
	for _, r := range s.Records {
		cw.line(r.String())
	}
	cw.line(endMarker)

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// String returns the stream text.
func (s *Stream) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

// WriteTempFile writes the stream to a new temporary file in dir and returns
// its path. The caller removes the file.
func (s *Stream) WriteTempFile(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "srcsrv-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating stream file: %w", err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing stream file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing stream file: %w", err)
	}
	return f.Name(), nil
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) line(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s + "\n")
	c.n += int64(n)
	c.err = err
}
