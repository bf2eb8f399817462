// Package downloader adapts retrieval recipes to the way files are fetched.
//
// The debugger cannot fetch URLs carrying a query string. For those the
// recipe is rewritten to run an external downloader: the URL becomes a plain
// variable, the command writes to a target file, and each record gains a
// leading field naming that file.
package downloader

import (
	"github.com/cbout22/srcindex/internal/provider"
	"github.com/cbout22/srcindex/internal/srcsrv"
)

// FirstField is the positional index of the first field after the file name.
const FirstField = 2

// Filter rewrites a provider's header and records. Filters decorate an inner
// filter; the innermost is Direct.
type Filter interface {
	// Variables rewrites the full header once per run.
	Variables(vars srcsrv.Variables) srcsrv.Variables

	// Placeholder maps a provider field index (as in %varN%) to the index
	// the field has in the final records.
	Placeholder(index int) int

	// Fields returns the final field list of one record.
	Fields(file *provider.FileInfo) []string
}

// Direct passes the recipe through untouched, for providers whose URLs the
// debugger fetches natively.
type Direct struct{}

var _ Filter = Direct{}

func (Direct) Variables(vars srcsrv.Variables) srcsrv.Variables { return vars.Clone() }

func (Direct) Placeholder(index int) int { return index }

func (Direct) Fields(file *provider.FileInfo) []string {
	out := make([]string, len(file.Fields))
	copy(out, file.Fields)
	return out
}

// Record renders one file through the filter.
func Record(f Filter, file *provider.FileInfo) srcsrv.Record {
	return file.Record(f.Fields(file))
}

// Header renders the provider's variables through the filter.
func Header(f Filter, p provider.Provider) srcsrv.Variables {
	return f.Variables(p.Variables())
}
