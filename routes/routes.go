package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/neiist-dev/activities-backend/config"
	"github.com/neiist-dev/activities-backend/internal/activity"
	"github.com/neiist-dev/activities-backend/internal/auditlog"
	"github.com/neiist-dev/activities-backend/internal/calendar"
	"github.com/neiist-dev/activities-backend/internal/member"
	"github.com/neiist-dev/activities-backend/internal/signup"
	"github.com/neiist-dev/activities-backend/internal/syncjob"
	"github.com/neiist-dev/activities-backend/middleware"
)

// Handlers groups every module's HTTP handler for route registration.
type Handlers struct {
	Activity *activity.Handler
	Signup   *signup.Handler
	Member   *member.Handler
	Calendar *calendar.Handler
	Sync     *syncjob.Handler
	Audit    *auditlog.Handler
}

// Setup registers all API routes.
func Setup(r *gin.Engine, cfg *config.Config, h Handlers) {
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter("120-M"))

	// Public routes
	api.POST("/auth/login", middleware.RateLimiter("10-M"), h.Member.Login)
	api.GET("/calendar/feed/:file", h.Calendar.Feed)

	// Authenticated routes
	auth := api.Group("")
	auth.Use(middleware.AuthRequired(cfg))
	{
		auth.GET("/activities", h.Activity.ListEvents)
		auth.GET("/activities/:id", h.Activity.GetEvent)
		auth.POST("/activities/:id/signups", h.Signup.Signup)
		auth.DELETE("/activities/:id/signups", h.Signup.Cancel)

		auth.GET("/members/me", h.Member.Me)
		auth.PUT("/members/me/alternative-email", h.Member.SetAlternativeEmail)
		auth.GET("/members/me/signups", h.Signup.MySignups)
	}

	// Admin routes
	admin := auth.Group("")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/activities/properties", h.Activity.UpdateProperties)
		admin.GET("/activities/:id/properties", h.Activity.GetProperties)
		admin.GET("/activities/:id/signups", h.Signup.ListSignups)
		admin.GET("/activities/:id/signups/export", h.Signup.Export)

		admin.GET("/members", h.Member.ListMembers)
		admin.POST("/members", h.Member.CreateMember)

		admin.POST("/sync/content", h.Sync.TriggerContentSync)
		admin.POST("/sync/calendars", h.Sync.TriggerCalendarSync)
		admin.GET("/sync/runs", h.Sync.ListRuns)

		admin.GET("/auditlogs", h.Audit.GetAuditLogs)
	}
}
