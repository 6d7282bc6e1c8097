package main

import (
	"github.com/huangang/bigbrother/internal/config"
	"github.com/huangang/bigbrother/internal/handlers"
	"github.com/huangang/bigbrother/internal/models"
	"github.com/huangang/bigbrother/internal/services"
	"github.com/huangang/bigbrother/internal/utils"
	"github.com/huangang/bigbrother/pkg/logger"
)

// appServices holds all initialized handlers needed by the router.
type appServices struct {
	cfg                *config.Config
	authHandler        *handlers.AuthHandler
	dashboardHandler   *handlers.DashboardHandler
	participantHandler *handlers.ParticipantHandler
	systemLogHandler   *handlers.SystemLogHandler
	healthHandler      *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Start system log cleanup scheduler
	services.StartLogCleanupScheduler(models.GetDB(), cfg.Log.RetentionDays)

	// Create default admin participant
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin participant")
	}

	return &appServices{
		cfg:                cfg,
		authHandler:        authHandler,
		dashboardHandler:   handlers.NewDashboardHandler(models.GetDB()),
		participantHandler: handlers.NewParticipantHandler(models.GetDB(), cfg.Storage.AvatarDir),
		systemLogHandler:   handlers.NewSystemLogHandler(models.GetDB(), cfg.Log.RetentionDays),
		healthHandler:      handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")
}
