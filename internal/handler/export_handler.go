package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type calendarExportService interface {
	CreateJob(ctx context.Context, studentID string, req dto.CreateExportRequest) (*models.CalendarExportJob, error)
	GetStatus(ctx context.Context, studentID, id string) (*models.CalendarExportJob, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler manages asynchronous calendar exports.
type ExportHandler struct {
	service calendarExportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc calendarExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue an export of the student's calendar
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "csv, pdf or ics"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /student/calendar/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	var req dto.CreateExportRequest
	if !bindJSON(c, &req, "invalid export payload") {
		return
	}
	job, err := h.service.CreateJob(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status and download URL once finished
// @Tags Calendar
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/calendar/exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	job, err := h.service.GetStatus(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Stream a finished export through its signed token
// @Tags Calendar
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /calendar/exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
		"Cache-Control":       "no-store",
	})
}
