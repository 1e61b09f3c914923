package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type calendarService interface {
	ToggleStudentCalendar(ctx context.Context, studentID, postID string) (*service.ToggleResult, error)
	CheckStudentCalendar(ctx context.Context, studentID, postID string) (bool, error)
	ListStudentEvents(ctx context.Context, studentID string) ([]models.CalendarEvent, error)
	ListTeamEvents(ctx context.Context) ([]models.CalendarEvent, error)
	DeleteStudentEvent(ctx context.Context, studentID, eventID string) error
}

// CalendarHandler serves the team calendar and students' personal calendars.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Toggle godoc
// @Summary Add a post's milestones to, or remove them from, the student's calendar
// @Tags Calendar
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/calendar/toggle-events/{postId} [post]
func (h *CalendarHandler) Toggle(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	result, err := h.service.ToggleStudentCalendar(c.Request.Context(), studentID, c.Param("postId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "Events removed from calendar successfully"
	if result.Added {
		message = "Events added to calendar successfully"
	}
	response.JSON(c, http.StatusOK, dto.ToggleCalendarResponse{
		Message:           message,
		IsAddedToCalendar: result.Added,
		Events:            result.Events,
	}, nil)
}

// Check godoc
// @Summary Whether a post is on the student's calendar
// @Tags Calendar
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /student/calendar/check-events/{postId} [get]
func (h *CalendarHandler) Check(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	added, err := h.service.CheckStudentCalendar(c.Request.Context(), studentID, c.Param("postId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CheckCalendarResponse{IsAddedToCalendar: added}, nil)
}

// StudentEvents godoc
// @Summary The student's calendar events, by date
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/calendar/view-events [get]
func (h *CalendarHandler) StudentEvents(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	events, err := h.service.ListStudentEvents(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// DeleteEvent godoc
// @Summary Remove one event from the student's calendar
// @Tags Calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/calendar/delete-event/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	if err := h.service.DeleteStudentEvent(c.Request.Context(), studentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Event deleted from calendar", nil)
}

// TeamEvents godoc
// @Summary Every post milestone on the shared team calendar
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placement-team/calendar/view-events [get]
func (h *CalendarHandler) TeamEvents(c *gin.Context) {
	events, err := h.service.ListTeamEvents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}
