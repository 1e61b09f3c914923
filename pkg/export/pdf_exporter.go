package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

// PDFExporter renders a calendar as an A4 agenda table with a color swatch per event.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }
func (e *PDFExporter) Extension() string   { return FormatPDF }

// Render creates the PDF document.
func (e *PDFExporter) Render(cal Calendar) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if cal.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, cal.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(8, 8, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(32, 8, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(150, 8, "Event", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	if len(cal.Entries) == 0 {
		pdf.CellFormat(190, 7, "No events", "1", 1, "C", false, 0, "")
	}
	for _, entry := range cal.Entries {
		r, g, b := hexToRGB(entry.Color)
		pdf.SetFillColor(r, g, b)
		pdf.CellFormat(8, 7, "", "1", 0, "", true, 0, "")
		pdf.CellFormat(32, 7, dates.Format(entry.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(150, 7, entry.Name, "1", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// hexToRGB parses #rrggbb, falling back to white.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
