package export

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

const icsDateLayout = "20060102"

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// ICSExporter renders an iCalendar (RFC 5545) file of all-day events.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter builds an exporter stamping files with productID.
func NewICSExporter(productID string) *ICSExporter {
	return &ICSExporter{productID: productID, now: time.Now}
}

func (e *ICSExporter) ContentType() string { return "text/calendar; charset=utf-8" }
func (e *ICSExporter) Extension() string   { return FormatICS }

// Render writes one VEVENT per entry. DTEND is the following day, as
// all-day events are end-exclusive.
func (e *ICSExporter) Render(cal Calendar) ([]byte, error) {
	buf := &bytes.Buffer{}
	stamp := e.now().UTC().Format("20060102T150405Z")

	line(buf, "BEGIN:VCALENDAR")
	line(buf, "VERSION:2.0")
	line(buf, "PRODID:"+e.productID)
	line(buf, "CALSCALE:GREGORIAN")
	line(buf, "METHOD:PUBLISH")
	if cal.Title != "" {
		line(buf, "X-WR-CALNAME:"+icsEscaper.Replace(cal.Title))
	}

	for _, entry := range cal.Entries {
		if entry.Date.IsZero() {
			continue
		}
		uid := entry.UID
		if uid == "" {
			uid = fmt.Sprintf("%s-%x", entry.Date.Format(icsDateLayout), hashName(entry.Name))
		}
		line(buf, "BEGIN:VEVENT")
		line(buf, "UID:"+uid+"@placement-portal")
		line(buf, "DTSTAMP:"+stamp)
		line(buf, "DTSTART;VALUE=DATE:"+entry.Date.Format(icsDateLayout))
		line(buf, "DTEND;VALUE=DATE:"+entry.Date.AddDate(0, 0, 1).Format(icsDateLayout))
		line(buf, "SUMMARY:"+icsEscaper.Replace(entry.Name))
		if entry.Color != "" {
			line(buf, "X-APPLE-CALENDAR-COLOR:"+entry.Color)
		}
		line(buf, "TRANSP:TRANSPARENT")
		line(buf, "END:VEVENT")
	}

	line(buf, "END:VCALENDAR")
	return buf.Bytes(), nil
}

func line(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteString("\r\n")
}

func hashName(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
