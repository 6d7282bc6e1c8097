package services

import (
	"testing"

	"github.com/huangang/bigbrother/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db)

	stats, err := svc.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalParticipants != 0 {
		t.Errorf("empty store should report 0 participants, got %d", stats.TotalParticipants)
	}

	createParticipant(t, db, &models.Participant{Username: "a", Nickname: "A", Status: models.StatusActive})
	createParticipant(t, db, &models.Participant{Username: "b", Nickname: "B", Status: models.StatusActive})
	createParticipant(t, db, &models.Participant{Username: "c", Nickname: "C", Status: models.StatusInactive})

	stats, err = svc.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalParticipants != 3 {
		t.Errorf("total = %d, expected 3", stats.TotalParticipants)
	}
	if stats.ActiveParticipants != 2 {
		t.Errorf("active = %d, expected 2", stats.ActiveParticipants)
	}
	if stats.InactiveParticipants != 1 {
		t.Errorf("inactive = %d, expected 1", stats.InactiveParticipants)
	}
}
