package models

import "time"

// SessionIdentity is the login identity lazily provisioned for a participant
// on first successful authentication. The email is captured from the
// participant's first contact address at provisioning time and is not
// refreshed on later logins.
type SessionIdentity struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string     `gorm:"size:254" json:"email"`
	FirstName string     `gorm:"size:30" json:"first_name"`
	LastName  string     `gorm:"size:150" json:"last_name"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (SessionIdentity) TableName() string { return "session_identities" }
