package models

import (
	"strings"
	"time"
)

// Participant status values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Participant roles. Simple participants are tracked only and cannot log in.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleViewer    = "viewer"
	RoleSimple    = "simple"
)

// AssignerRoles are the roles allowed to appear as assigned_by.
var AssignerRoles = []string{RoleAdmin, RoleModerator}

// Participant represents a tracked person.
type Participant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password  string `gorm:"size:255" json:"-"` // bcrypt hash
	Nickname  string `gorm:"size:50;not null" json:"nickname"`
	FirstName string `gorm:"size:30" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`

	Status       string     `gorm:"size:10;default:active" json:"status"` // active, inactive
	DateInactive *time.Time `json:"date_inactive"`
	Role         string     `gorm:"size:10;default:simple" json:"role"` // admin, moderator, viewer, simple

	AssignedByID *uint        `gorm:"index" json:"assigned_by"`
	AssignedBy   *Participant `gorm:"foreignKey:AssignedByID" json:"-"`

	Avatar string `gorm:"size:500" json:"avatar"` // stored file path

	Phones  []Phone            `gorm:"constraint:OnDelete:CASCADE" json:"phones,omitempty"`
	Emails  []Email            `gorm:"constraint:OnDelete:CASCADE" json:"emails,omitempty"`
	History []HistoricalRecord `gorm:"constraint:OnDelete:CASCADE" json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Participant) TableName() string { return "participants" }

// FullName returns "first last" with surrounding whitespace trimmed.
func (p *Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CanLogin reports whether the participant's role permits authentication.
func (p *Participant) CanLogin() bool {
	return p.Role != RoleSimple
}

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleViewer, RoleSimple:
		return true
	}
	return false
}

// ValidStatus reports whether status is one of the known status values.
func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}
