package services

import (
	"testing"

	"github.com/huangang/bigbrother/internal/models"
	"github.com/huangang/bigbrother/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	utils.SetJWTSecret("test-secret-key-for-service-tests")
}

// setupTestDB opens an isolated in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Participant{},
		&models.Phone{},
		&models.Email{},
		&models.HistoricalRecord{},
		&models.SessionIdentity{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// createParticipant inserts a participant row directly, bypassing validation.
func createParticipant(t *testing.T, db *gorm.DB, p *models.Participant) *models.Participant {
	t.Helper()
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.Role == "" {
		p.Role = models.RoleSimple
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create participant %q: %v", p.Username, err)
	}
	return p
}
