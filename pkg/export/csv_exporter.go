package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

var csvHeaders = []string{"date", "event", "color"}

// CSVExporter renders calendar entries as CSV, one row per event.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (e *CSVExporter) Extension() string   { return FormatCSV }

// Render produces CSV encoded bytes for the calendar.
func (e *CSVExporter) Render(cal Calendar) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, entry := range cal.Entries {
		if err := writer.Write([]string{dates.Format(entry.Date), entry.Name, entry.Color}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
