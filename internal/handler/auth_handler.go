package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/dto"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/pkg/response"
)

type authService interface {
	SignupStudent(ctx context.Context, req dto.SignupRequest) (*models.AuthResult, error)
	SignupTeam(ctx context.Context, req dto.SignupRequest) (*models.AuthResult, error)
	LoginStudent(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error)
	LoginTeam(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error)
}

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  SessionCookie
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie}
}

// StudentSignup godoc
// @Summary Register a student
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/student/signup [post]
func (h *AuthHandler) StudentSignup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req, "invalid signup payload") {
		return
	}
	h.respond(c, http.StatusCreated, "Student registered successfully", func(ctx context.Context) (*models.AuthResult, error) {
		return h.service.SignupStudent(ctx, req)
	})
}

// StudentLogin godoc
// @Summary Authenticate a student
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/student/login [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	h.respond(c, http.StatusOK, "Logged in successfully", func(ctx context.Context) (*models.AuthResult, error) {
		return h.service.LoginStudent(ctx, req)
	})
}

// TeamSignup godoc
// @Summary Register a placement-team member
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/placement-team/signup [post]
func (h *AuthHandler) TeamSignup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req, "invalid signup payload") {
		return
	}
	h.respond(c, http.StatusCreated, "Placement team member registered successfully", func(ctx context.Context) (*models.AuthResult, error) {
		return h.service.SignupTeam(ctx, req)
	})
}

// TeamLogin godoc
// @Summary Authenticate a placement-team member
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/placement-team/login [post]
func (h *AuthHandler) TeamLogin(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	h.respond(c, http.StatusOK, "Logged in successfully", func(ctx context.Context) (*models.AuthResult, error) {
		return h.service.LoginTeam(ctx, req)
	})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/student/logout [post]
// @Router /auth/placement-team/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	response.Message(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) respond(c *gin.Context, status int, message string, call func(context.Context) (*models.AuthResult, error)) {
	result, err := call(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, result.Token, int(h.cookie.MaxAge.Seconds()))
	response.Message(c, status, message, result)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
