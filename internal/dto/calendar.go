package dto

import "github.com/noah-isme/placement-portal-api/internal/models"

// ToggleCalendarResponse reports the state after a toggle and the student's events.
type ToggleCalendarResponse struct {
	Message           string                 `json:"message"`
	IsAddedToCalendar bool                   `json:"isAddedToCalendar"`
	Events            []models.CalendarEvent `json:"events"`
}

// CheckCalendarResponse reports whether a post is on the student's calendar.
type CheckCalendarResponse struct {
	IsAddedToCalendar bool `json:"isAddedToCalendar"`
}

// CreateExportRequest asks for an asynchronous calendar export.
type CreateExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf ics"`
}
