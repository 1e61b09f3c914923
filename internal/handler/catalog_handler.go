package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/pkg/catalog"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type catalogService interface {
	DropdownOptions(ctx context.Context) catalog.Options
}

// CatalogHandler serves the fixed enumerations used by filter dropdowns.
type CatalogHandler struct {
	service catalogService
}

func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// DropdownOptions godoc
// @Summary Branches, years, cgpa bands and post types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/homepage-dropdown-options [get]
// @Router /placement-team/homepage-dropdown-options [get]
func (h *CatalogHandler) DropdownOptions(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.DropdownOptions(c.Request.Context()), nil)
}
