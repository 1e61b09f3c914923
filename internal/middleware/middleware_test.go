package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/service"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type staticValidator map[string]*models.JWTClaims

func (v staticValidator) Authenticate(_ context.Context, token string) (*models.JWTClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator := staticValidator{
		"student-token": {UserID: "s1", Role: models.RoleStudent},
		"team-token":    {UserID: "t1", Role: models.RoleTeam},
	}
	r := gin.New()
	r.GET("/me", JWT(validator, "jwt-thaparnexus"), RequireRoles(roles...), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func TestJWTReadsCookieBeforeHeader(t *testing.T) {
	r := newProtectedRouter(models.RoleStudent, models.RoleTeam)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt-thaparnexus", Value: "team-token"})
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", w.Body.String())
}

func TestJWTFallsBackToBearer(t *testing.T) {
	r := newProtectedRouter(models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", w.Body.String())
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := newProtectedRouter(models.RoleStudent)

	for _, header := range []string{"", "Token abc", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	r := newProtectedRouter(models.RoleTeam)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, path := range []string{"/posts/a", "/posts/b", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/posts/:id",status="200"} 2`)
	assert.Contains(t, body, `path="unmatched",status="404"`)
	assert.False(t, strings.Contains(body, `path="/metrics"`))
}
