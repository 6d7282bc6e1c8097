package services

import (
	"github.com/huangang/bigbrother/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	TotalParticipants    int64 `json:"total_participants"`
	ActiveParticipants   int64 `json:"active_participants"`
	InactiveParticipants int64 `json:"inactive_participants"`
}

func (s *DashboardService) GetStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.Model(&models.Participant{}).Count(&stats.TotalParticipants).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Participant{}).
		Where("status = ?", models.StatusActive).
		Count(&stats.ActiveParticipants).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Participant{}).
		Where("status = ?", models.StatusInactive).
		Count(&stats.InactiveParticipants).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
