// Package importer turns an uploaded file into validated, deduplicated sales.
//
// The file format is resolved once from its name and first bytes. Each format
// has its own row extractor; all of them feed the same header check and
// per-row pipeline (normalize, validate, dedup).
package importer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the detected layout of an import file.
type Format int

const (
	// FormatDelimited is comma or semicolon separated text.
	FormatDelimited Format = iota
	// FormatHTMLTable is an HTML document holding a <table>, which is what
	// the spreadsheet export writes under a .xls name.
	FormatHTMLTable
	// FormatXLSX is an Office Open XML workbook.
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatHTMLTable:
		return "html"
	case FormatXLSX:
		return "xlsx"
	default:
		return "delimited"
	}
}

// MarshalText encodes the format by name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a name written by MarshalText.
func (f *Format) UnmarshalText(b []byte) error {
	switch string(b) {
	case "delimited":
		*f = FormatDelimited
	case "html":
		*f = FormatHTMLTable
	case "xlsx":
		*f = FormatXLSX
	default:
		return fmt.Errorf("unknown import format %q", b)
	}
	return nil
}

var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks the format for a file. Content wins over the name:
// a zip archive is a workbook whatever its extension, and a .xlsx that is
// really an HTML table is read as one.
func DetectFormat(filename string, data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls", ".xlsx", ".html", ".htm":
		return FormatHTMLTable
	}
	if containsFold(data, []byte("<table")) {
		return FormatHTMLTable
	}
	return FormatDelimited
}

func containsFold(data, sub []byte) bool {
	return bytes.Contains(bytes.ToLower(data), sub)
}
