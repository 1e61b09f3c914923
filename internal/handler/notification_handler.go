package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type notificationService interface {
	ListStudentNotifications(ctx context.Context, studentID string) ([]models.StudentNotificationView, error)
	ListTeamNotifications(ctx context.Context, memberID string) ([]models.TeamNotificationView, error)
	MarkStudentNotificationRead(ctx context.Context, studentID, id string) error
	MarkTeamNotificationRead(ctx context.Context, memberID, id string) error
}

// NotificationHandler lists and acknowledges notifications for both roles.
type NotificationHandler struct {
	service notificationService
}

func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// StudentList godoc
// @Summary Notifications for the current student, newest first
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/notifications [get]
func (h *NotificationHandler) StudentList(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	items, err := h.service.ListStudentNotifications(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notifications": items}, nil)
}

// StudentMarkRead godoc
// @Summary Mark a student notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/notifications/{id}/mark-as-read [put]
func (h *NotificationHandler) StudentMarkRead(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	if err := h.service.MarkStudentNotificationRead(c.Request.Context(), id, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Notification marked as read", nil)
}

// TeamList godoc
// @Summary Notifications for the current placement-team member
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placement-team/notifications [get]
func (h *NotificationHandler) TeamList(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	items, err := h.service.ListTeamNotifications(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notifications": items}, nil)
}

// TeamMarkRead godoc
// @Summary Mark a placement-team notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /placement-team/notifications/{id}/mark-as-read [put]
func (h *NotificationHandler) TeamMarkRead(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	if err := h.service.MarkTeamNotificationRead(c.Request.Context(), id, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Notification marked as read", nil)
}
