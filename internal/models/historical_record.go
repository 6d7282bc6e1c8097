package models

import "time"

// Tracked attribute record types. The most recent record of a type is the
// attribute's current value; older records are kept as history.
const (
	RecordActivity        = "activity"
	RecordActivityAddress = "activity_address"
	RecordJob             = "job"
	RecordJobAddress      = "job_address"
	RecordAddress         = "address"
)

// TrackedRecordTypes lists all record types in submission order.
var TrackedRecordTypes = []string{
	RecordActivity,
	RecordActivityAddress,
	RecordJob,
	RecordJobAddress,
	RecordAddress,
}

// ValidRecordType reports whether t is one of the five tracked types.
func ValidRecordType(t string) bool {
	for _, rt := range TrackedRecordTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// HistoricalRecord is an append-only versioned value of a tracked attribute.
// Rows are never updated after creation.
type HistoricalRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID uint      `gorm:"index;not null" json:"participant_id"`
	RecordType    string    `gorm:"size:20;index;not null" json:"record_type"`
	Value         string    `gorm:"type:text;not null" json:"value"`
	ChangedAt     time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
}

func (HistoricalRecord) TableName() string { return "historical_records" }
