package models

// Email is a contact address owned by a single participant.
type Email struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ParticipantID uint   `gorm:"index;not null" json:"participant_id"`
	Address       string `gorm:"size:254;not null" json:"email"`
}

func (Email) TableName() string { return "emails" }
