package export

import (
	"fmt"
	"time"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
	FormatICS = "ics"
)

// Entry is one all-day calendar event.
type Entry struct {
	UID   string
	Name  string
	Date  time.Time
	Color string
}

// Calendar is the renderable content of an export.
type Calendar struct {
	Title   string
	Entries []Entry
}

// Renderer turns a calendar into file bytes.
type Renderer interface {
	Render(Calendar) ([]byte, error)
	ContentType() string
	Extension() string
}

// RendererFor returns the renderer registered for format.
func RendererFor(format string) (Renderer, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatICS:
		return NewICSExporter("-//placement-portal//calendar//EN"), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
