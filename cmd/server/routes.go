package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/bigbrother/internal/middleware"
	"github.com/huangang/bigbrother/internal/models"
	"github.com/huangang/bigbrother/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the login route
	loginLimiter := middleware.NewRateLimiter(5, 10)

	db := models.GetDB()

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentParticipant)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Dashboard (any authenticated role)
			protected.GET("/dashboard/stats", svc.dashboardHandler.GetStats)

			// Participant list (any authenticated role)
			protected.GET("/participants", svc.participantHandler.List)
		}

		// Routes gated by the participant's current role
		detail := api.Group("")
		detail.Use(middleware.AuthRequired(),
			middleware.RoleRequired(db, models.RoleAdmin, models.RoleModerator, models.RoleViewer))
		{
			detail.GET("/participants/:id", svc.participantHandler.GetByID)
		}

		manage := api.Group("")
		manage.Use(middleware.AuthRequired(),
			middleware.RoleRequired(db, models.RoleAdmin, models.RoleModerator),
			middleware.AuditLog())
		{
			manage.POST("/participants", svc.participantHandler.Create)
			manage.PUT("/participants/:id", svc.participantHandler.Update)
			manage.POST("/participants/:id/avatar", svc.participantHandler.UploadAvatar)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(),
			middleware.RoleRequired(db, models.RoleAdmin),
			middleware.AuditLog())
		{
			admin.DELETE("/participants/:id", svc.participantHandler.Delete)

			// System Logs
			admin.GET("/system-logs", svc.systemLogHandler.List)
			admin.GET("/system-logs/modules", svc.systemLogHandler.GetModules)
			admin.POST("/system-logs/cleanup", svc.systemLogHandler.Cleanup)
		}
	}
}
