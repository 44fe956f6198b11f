package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AyaSox/Recruitment-system-sub000/internal/middleware"
	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
	Auth         *AuthHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Audit        *AuditHandler
	Metrics      *MetricsHandler
	AuthService  *service.AuthService
	AuditService *service.AuditService
}

// RegisterRoutes mounts the API under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleRecruiter)
	admin := middleware.RequireRoles(models.RoleAdmin)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(h.AuthService), h.Auth.Logout)
		auth.POST("/change-password", middleware.JWT(h.AuthService), h.Auth.ChangePassword)
		auth.GET("/me", middleware.JWT(h.AuthService), h.Auth.Me)
	}

	jobsGroup := api.Group("/jobs")
	{
		jobsGroup.GET("", middleware.OptionalJWT(h.AuthService), h.Jobs.List)
		jobsGroup.GET("/:id", middleware.OptionalJWT(h.AuthService), h.Jobs.Get)
		jobsGroup.POST("", middleware.JWT(h.AuthService), staff, h.Jobs.Create)
		jobsGroup.PUT("/:id", middleware.JWT(h.AuthService), staff, h.Jobs.Update)
		jobsGroup.POST("/:id/publish", middleware.JWT(h.AuthService), staff, h.Jobs.Publish)
		jobsGroup.POST("/:id/unpublish", middleware.JWT(h.AuthService), staff, h.Jobs.Unpublish)
		jobsGroup.DELETE("/:id", middleware.JWT(h.AuthService), staff, h.Jobs.Delete)
	}

	apps := api.Group("/applications")
	{
		apps.POST("/guest", h.Applications.ApplyGuest)
		apps.POST("", middleware.JWT(h.AuthService), h.Applications.Apply)
		apps.GET("", middleware.JWT(h.AuthService), staff, h.Applications.List)
		apps.GET("/mine", middleware.JWT(h.AuthService), h.Applications.ListMine)
		apps.GET("/stats", middleware.JWT(h.AuthService), staff, h.Applications.Stats)
		apps.GET("/export", middleware.JWT(h.AuthService), staff, middleware.Audit(h.AuditService, models.AuditActionExport, "applications"), h.Applications.Export)
		apps.GET("/:id", middleware.JWT(h.AuthService), h.Applications.Get)
		apps.PATCH("/:id/status", middleware.JWT(h.AuthService), staff, h.Applications.UpdateStatus)
		apps.POST("/:id/withdraw", middleware.JWT(h.AuthService), h.Applications.Withdraw)
		apps.GET("/:id/resume-link", middleware.JWT(h.AuthService), staff, middleware.Audit(h.AuditService, models.AuditActionDownload, "resume"), h.Applications.ResumeLink)
	}

	api.GET("/resumes/download", h.Applications.DownloadResume)

	api.GET("/audit-logs", middleware.JWT(h.AuthService), admin, h.Audit.List)
	api.GET("/system/metrics", middleware.JWT(h.AuthService), admin, h.Metrics.Snapshot)
}
