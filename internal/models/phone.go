package models

import "regexp"

// PhoneNumberPattern accepts an optional + and country code 1 followed by 9-15 digits.
var PhoneNumberPattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Phone is a contact number owned by a single participant.
type Phone struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ParticipantID uint   `gorm:"index;not null" json:"participant_id"`
	Number        string `gorm:"size:17;not null" json:"number"`
}

func (Phone) TableName() string { return "phones" }
