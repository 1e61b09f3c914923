package models

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/placement-portal-api/pkg/dates"
)

// CalendarEvent is a dated entry derived from a post milestone. Team events
// have an empty StudentID; student events are owned by one student.
type CalendarEvent struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id,omitempty"`
	PostID    string    `db:"post_id" json:"post_id"`
	Name      string    `db:"name" json:"name"`
	Date      time.Time `db:"event_date" json:"date"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	type alias CalendarEvent
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(e), dates.Format(e.Date)})
}

func (e *CalendarEvent) UnmarshalJSON(data []byte) error {
	type alias CalendarEvent
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		e.Date = time.Time{}
		return nil
	}
	day, err := time.Parse(dates.Layout, aux.Date)
	if err != nil {
		return err
	}
	e.Date = day
	return nil
}
