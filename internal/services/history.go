package services

import (
	"errors"

	"github.com/huangang/bigbrother/internal/models"
	"gorm.io/gorm"
)

// HistoryService maintains the append-only log of tracked attribute values.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record appends a historical record for every tracked type whose submitted
// value is non-empty and differs from the current (most recent) value.
// Identical resubmissions are a no-op. Must run after the participant row is
// persisted; tx is expected to be the surrounding save transaction.
func (s *HistoryService) Record(tx *gorm.DB, participantID uint, values map[string]string) error {
	for _, recordType := range models.TrackedRecordTypes {
		value, ok := values[recordType]
		if !ok || value == "" {
			continue
		}

		current, err := latestRecord(tx, participantID, recordType)
		if err != nil {
			return err
		}
		if current != nil && current.Value == value {
			continue
		}

		record := models.HistoricalRecord{
			ParticipantID: participantID,
			RecordType:    recordType,
			Value:         value,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}

	return nil
}

// Latest returns the current value per tracked type. Types with no records
// are present with an empty value so callers can pre-populate forms.
func (s *HistoryService) Latest(participantID uint) (map[string]string, error) {
	values := make(map[string]string, len(models.TrackedRecordTypes))
	for _, recordType := range models.TrackedRecordTypes {
		record, err := latestRecord(s.db, participantID, recordType)
		if err != nil {
			return nil, err
		}
		if record != nil {
			values[recordType] = record.Value
		} else {
			values[recordType] = ""
		}
	}
	return values, nil
}

// ListByParticipant returns the full history, newest first.
func (s *HistoryService) ListByParticipant(participantID uint) ([]models.HistoricalRecord, error) {
	var records []models.HistoricalRecord
	err := s.db.Where("participant_id = ?", participantID).
		Order("changed_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

// latestRecord fetches the most recent record of a type, or nil if none.
// The id tiebreak keeps ordering stable for records created in the same
// timestamp granule.
func latestRecord(tx *gorm.DB, participantID uint, recordType string) (*models.HistoricalRecord, error) {
	var record models.HistoricalRecord
	err := tx.Where("participant_id = ? AND record_type = ?", participantID, recordType).
		Order("changed_at DESC, id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
