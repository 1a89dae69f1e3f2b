// Package exporter writes sales as downloadable documents: an HTML table
// that Excel opens as a .xls, a printable HTML page, and a real .xlsx
// workbook. Every format has one header row with the six contract labels
// and renders dates as DD/MM/YYYY and prices by label.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/ventes/internal/core"
)

// Format is an export document type.
type Format string

const (
	FormatSpreadsheet Format = "xls"
	FormatPrint       Format = "print"
	FormatXLSX        Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a query value to a Format. Empty means FormatSpreadsheet.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xls", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	case "print", "pdf", "html":
		return FormatPrint, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPrint:
		return ".html"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".xls"
	}
}

// ContentType returns the MIME type served with the document.
func (f Format) ContentType() string {
	switch f {
	case FormatPrint:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/vnd.ms-excel"
	}
}

// Filename returns the download name, e.g. ventes_appartements_2024-06-15.xls.
func Filename(f Format, now time.Time) string {
	return "ventes_appartements_" + now.Format(core.ISODate) + f.Extension()
}

// Export writes sales to w in the given format. An empty sequence is
// core.ErrNothingToExport and nothing is written.
func Export(ctx context.Context, w io.Writer, sales []core.Sale, f Format, now time.Time) error {
	if len(sales) == 0 {
		return core.ErrNothingToExport
	}

	switch f {
	case FormatSpreadsheet:
		return spreadsheetDocument(sales, now).Render(ctx, w)
	case FormatPrint:
		return printDocument(sales, now).Render(ctx, w)
	case FormatXLSX:
		return writeWorkbook(w, sales)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
