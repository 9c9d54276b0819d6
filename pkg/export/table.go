// Package export renders tabular grade data to downloadable files.
package export

import (
	"fmt"
	"strings"
)

// Table is an ordered grid of cells with an optional title.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Validate checks the table has headers and rectangular rows.
func (t Table) Validate() error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table requires at least one header")
	}
	for i, row := range t.Rows {
		if len(row) > len(t.Headers) {
			return fmt.Errorf("row %d has %d cells for %d headers", i, len(row), len(t.Headers))
		}
	}
	return nil
}

func (t Table) cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Renderer produces one file format.
type Renderer interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// Format names accepted by ForFormat.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ForFormat returns the renderer of a format name.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return NewCSVRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// FileName builds a download name from parts, dropping characters that are
// unsafe in a Content-Disposition header.
func FileName(ext string, parts ...string) string {
	var cleaned []string
	for _, p := range parts {
		p = strings.Map(func(r rune) rune {
			switch r {
			case '"', '/', '\\', ':', '*', '?', '<', '>', '|':
				return -1
			case ' ':
				return '_'
			}
			return r
		}, strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{"export"}
	}
	return strings.Join(cleaned, "_") + "." + ext
}
