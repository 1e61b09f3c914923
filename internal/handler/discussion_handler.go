package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type discussionService interface {
	AskQuery(ctx context.Context, studentID, postID, text string) (*models.Query, error)
	ReplyToQuery(ctx context.Context, teamMemberID, queryID, text string) (*models.Reply, error)
}

// DiscussionHandler handles student queries and team replies on posts.
type DiscussionHandler struct {
	service discussionService
}

// NewDiscussionHandler constructs the handler.
func NewDiscussionHandler(svc discussionService) *DiscussionHandler {
	return &DiscussionHandler{service: svc}
}

// AskQuery godoc
// @Summary Ask a question on a post
// @Tags Discussion
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.AskQueryRequest true "Query text"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/posts/{id}/query [post]
func (h *DiscussionHandler) AskQuery(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	var req dto.AskQueryRequest
	if !bindJSON(c, &req, "invalid query payload") {
		return
	}
	query, err := h.service.AskQuery(c.Request.Context(), studentID, c.Param("id"), req.QueryText)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"query": query})
}

// Reply godoc
// @Summary Reply to a student's query
// @Tags Discussion
// @Accept json
// @Produce json
// @Param queryId path string true "Query ID"
// @Param payload body dto.ReplyRequest true "Reply text"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /placement-team/posts/query/{queryId}/reply [post]
func (h *DiscussionHandler) Reply(c *gin.Context) {
	memberID := currentUserID(c)
	if memberID == "" {
		return
	}
	var req dto.ReplyRequest
	if !bindJSON(c, &req, "invalid reply payload") {
		return
	}
	reply, err := h.service.ReplyToQuery(c.Request.Context(), memberID, c.Param("queryId"), req.ReplyText)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"reply": reply})
}
