package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type postService interface {
	CreatePost(ctx context.Context, authorID string, req dto.CreatePostRequest) (*models.Post, error)
	EditPost(ctx context.Context, postID string, req dto.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, postID string) error
	GetPost(ctx context.Context, postID string) (*models.PostView, error)
	ListPosts(ctx context.Context, query dto.PostListQuery) ([]models.PostView, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.PostView, error)
	ToggleSavedPost(ctx context.Context, studentID, postID string) (bool, error)
	ListSavedPosts(ctx context.Context, studentID string) ([]models.PostView, error)
}

// PostHandler exposes post browsing for students and authoring for the placement team.
type PostHandler struct {
	service postService
}

// NewPostHandler constructs the handler.
func NewPostHandler(svc postService) *PostHandler {
	return &PostHandler{service: svc}
}

// List godoc
// @Summary List posts, newest first
// @Tags Posts
// @Produce json
// @Param searchText query string false "Case-insensitive title match"
// @Param year query string false "Study year or All"
// @Param eventType query string false "Category or All"
// @Param branch query string false "Branch or All"
// @Param cgpa query string false "Student cgpa or All"
// @Success 200 {object} response.Envelope
// @Router /student/posts [get]
// @Router /placement-team/posts [get]
func (h *PostHandler) List(c *gin.Context) {
	var query dto.PostListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid filters"))
		return
	}
	posts, err := h.service.ListPosts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// Get godoc
// @Summary Post detail with author and query threads
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/posts/{id} [get]
// @Router /placement-team/posts/{id} [get]
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Create godoc
// @Summary Publish a post and its team calendar events
// @Tags Posts
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Post payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /placement-team/posts/new-post [post]
func (h *PostHandler) Create(c *gin.Context) {
	authorID := currentUserID(c)
	if authorID == "" {
		return
	}
	var req dto.CreatePostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), authorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Edit godoc
// @Summary Edit a post and resynchronize its calendar events
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.UpdatePostRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /placement-team/posts/edit-post/{id} [put]
func (h *PostHandler) Edit(c *gin.Context) {
	var req dto.UpdatePostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}
	post, err := h.service.EditPost(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Delete godoc
// @Summary Delete a post and every calendar event derived from it
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /placement-team/posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.service.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Post and associated calendar events deleted successfully", nil)
}

// MyPosts godoc
// @Summary Posts authored by the current member
// @Tags Posts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placement-team/posts/my-posts [get]
func (h *PostHandler) MyPosts(c *gin.Context) {
	authorID := currentUserID(c)
	if authorID == "" {
		return
	}
	posts, err := h.service.ListByAuthor(c.Request.Context(), authorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// ToggleSaved godoc
// @Summary Save or unsave a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/posts/save/{id} [put]
func (h *PostHandler) ToggleSaved(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	saved, err := h.service.ToggleSavedPost(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "Post unsaved"
	if saved {
		message = "Post saved"
	}
	response.Message(c, http.StatusOK, message, gin.H{"saved": saved})
}

// Saved godoc
// @Summary The current student's saved posts
// @Tags Posts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/posts/saved [get]
func (h *PostHandler) Saved(c *gin.Context) {
	studentID := currentUserID(c)
	if studentID == "" {
		return
	}
	posts, err := h.service.ListSavedPosts(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}
