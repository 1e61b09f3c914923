package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Catalog       *CatalogHandler
	Posts         *PostHandler
	Discussion    *DiscussionHandler
	Notifications *NotificationHandler
	Calendar      *CalendarHandler
	Exports       *ExportHandler
}

// RegisterRoutes mounts the portal API on api. authn must set
// middleware.ContextUserKey on success.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, authn gin.HandlerFunc) {
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	teamOnly := middleware.RequireRoles(models.RoleTeam)

	auth := api.Group("/auth")
	{
		auth.POST("/student/signup", h.Auth.StudentSignup)
		auth.POST("/student/login", h.Auth.StudentLogin)
		auth.POST("/student/logout", h.Auth.Logout)
		auth.PUT("/student/complete-profile", authn, studentOnly, h.Profile.CompleteProfile)

		auth.POST("/placement-team/signup", h.Auth.TeamSignup)
		auth.POST("/placement-team/login", h.Auth.TeamLogin)
		auth.POST("/placement-team/logout", h.Auth.Logout)
	}

	student := api.Group("/student", authn, studentOnly)
	{
		student.GET("/homepage-dropdown-options", h.Catalog.DropdownOptions)
		student.GET("/profile", h.Profile.StudentProfile)
		student.PUT("/profile", h.Profile.UpdateProfile)
		student.PUT("/profile/profile-picture", h.Profile.UpdateProfilePicture)

		student.GET("/posts", h.Posts.List)
		student.GET("/posts/saved", h.Posts.Saved)
		student.PUT("/posts/save/:id", h.Posts.ToggleSaved)
		student.POST("/posts/:id/query", h.Discussion.AskQuery)
		student.GET("/posts/:id", h.Posts.Get)

		student.GET("/notifications", h.Notifications.StudentList)
		student.PUT("/notifications/:id/mark-as-read", h.Notifications.StudentMarkRead)

		student.POST("/calendar/toggle-events/:postId", h.Calendar.Toggle)
		student.GET("/calendar/check-events/:postId", h.Calendar.Check)
		student.GET("/calendar/view-events", h.Calendar.StudentEvents)
		student.DELETE("/calendar/delete-event/:id", h.Calendar.DeleteEvent)
		student.POST("/calendar/exports", h.Exports.Create)
		student.GET("/calendar/exports/:id", h.Exports.Status)
	}

	api.GET("/calendar/exports/download/:token", h.Exports.Download)

	team := api.Group("/placement-team", authn, teamOnly)
	{
		team.GET("/homepage-dropdown-options", h.Catalog.DropdownOptions)
		team.GET("/profile", h.Profile.TeamProfile)

		team.GET("/posts", h.Posts.List)
		team.POST("/posts/new-post", h.Posts.Create)
		team.PUT("/posts/edit-post/:id", h.Posts.Edit)
		team.GET("/posts/my-posts", h.Posts.MyPosts)
		team.POST("/posts/query/:queryId/reply", h.Discussion.Reply)
		team.GET("/posts/:id", h.Posts.Get)
		team.DELETE("/posts/:id", h.Posts.Delete)

		team.GET("/calendar/view-events", h.Calendar.TeamEvents)

		team.GET("/notifications", h.Notifications.TeamList)
		team.PUT("/notifications/:id/mark-as-read", h.Notifications.TeamMarkRead)
	}
}
