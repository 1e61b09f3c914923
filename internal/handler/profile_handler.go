package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type profileService interface {
	GetStudentProfile(ctx context.Context, studentID string) (*models.Student, error)
	GetTeamProfile(ctx context.Context, memberID string) (*models.TeamMember, error)
	CompleteProfile(ctx context.Context, studentID string, req dto.CompleteProfileRequest) (*models.Student, error)
	UpdateProfile(ctx context.Context, studentID string, req dto.UpdateProfileRequest) (*models.Student, error)
	UpdateProfilePicture(ctx context.Context, studentID string, req dto.ProfilePictureRequest) (*models.Student, error)
}

// ProfileHandler serves student and placement-team profiles.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// StudentProfile godoc
// @Summary Current student's profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/profile [get]
func (h *ProfileHandler) StudentProfile(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	student, err := h.service.GetStudentProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// CompleteProfile godoc
// @Summary Fill the academic profile of a new student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CompleteProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/student/complete-profile [put]
func (h *ProfileHandler) CompleteProfile(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	var req dto.CompleteProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	student, err := h.service.CompleteProfile(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Profile completed successfully.", student)
}

// UpdateProfile godoc
// @Summary Update editable student fields
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	student, err := h.service.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateProfilePicture godoc
// @Summary Upload a new profile picture
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.ProfilePictureRequest true "Data URI or image URL"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /student/profile/profile-picture [put]
func (h *ProfileHandler) UpdateProfilePicture(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	var req dto.ProfilePictureRequest
	if !bindJSON(c, &req, "invalid profile picture payload") {
		return
	}
	student, err := h.service.UpdateProfilePicture(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"profilePicture": student.ProfilePicture}, nil)
}

// TeamProfile godoc
// @Summary Current placement-team member's profile
// @Tags PlacementTeam
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placement-team/profile [get]
func (h *ProfileHandler) TeamProfile(c *gin.Context) {
	id := currentUserID(c)
	if id == "" {
		return
	}
	member, err := h.service.GetTeamProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}
