package services

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/huangang/bigbrother/internal/models"
	"github.com/huangang/bigbrother/internal/utils"
	"gorm.io/gorm"
)

// ListPageSize is the fixed page size of the participant list view.
const ListPageSize = 25

type ParticipantService struct {
	db      *gorm.DB
	history *HistoryService
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{
		db:      db,
		history: NewHistoryService(db),
	}
}

type PhoneInput struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
}

type EmailInput struct {
	ID      uint   `json:"id"`
	Address string `json:"email"`
}

// ParticipantInput is the create/edit form payload. The five tracked fields
// feed the historical record log rather than participant columns.
type ParticipantInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Nickname        string `json:"nickname"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Status          string `json:"status"`
	DateInactive    string `json:"date_inactive"` // YYYY-MM-DD, optional
	Role            string `json:"role"`
	AssignedByID    *uint  `json:"assigned_by"`

	Phones []PhoneInput `json:"phones"`
	Emails []EmailInput `json:"emails"`

	Activity        string `json:"activity"`
	ActivityAddress string `json:"activity_address"`
	Job             string `json:"job"`
	JobAddress      string `json:"job_address"`
	Address         string `json:"address"`
}

func (in *ParticipantInput) trackedValues() map[string]string {
	return map[string]string{
		models.RecordActivity:        in.Activity,
		models.RecordActivityAddress: in.ActivityAddress,
		models.RecordJob:             in.Job,
		models.RecordJobAddress:      in.JobAddress,
		models.RecordAddress:         in.Address,
	}
}

// validate checks the whole submission before any write happens. existing is
// nil on create. Returns the parsed inactive date when one was supplied.
func (s *ParticipantService) validate(in *ParticipantInput, existing *models.Participant) (*time.Time, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Nickname = strings.TrimSpace(in.Nickname)

	if in.Username == "" {
		return nil, validationErr("username", "username is required")
	}
	if in.Nickname == "" {
		return nil, validationErr("nickname", "nickname is required")
	}

	// Username uniqueness
	query := s.db.Model(&models.Participant{}).Where("username = ?", in.Username)
	if existing != nil {
		query = query.Where("id != ?", existing.ID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("username", "participant with username %q already exists", in.Username)
	}

	// Password: required on create, optional on edit; when supplied it must
	// match the confirmation.
	if existing == nil && in.Password == "" {
		return nil, validationErr("password", "password is required")
	}
	if in.Password != "" && in.Password != in.ConfirmPassword {
		return nil, validationErr("confirm_password", "passwords do not match")
	}

	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if !models.ValidStatus(in.Status) {
		return nil, validationErr("status", "invalid status %q", in.Status)
	}

	if in.Role == "" {
		in.Role = models.RoleSimple
	}
	if !models.ValidRole(in.Role) {
		return nil, validationErr("role", "invalid role %q", in.Role)
	}

	var dateInactive *time.Time
	if in.DateInactive != "" {
		parsed, err := time.Parse("2006-01-02", in.DateInactive)
		if err != nil {
			return nil, validationErr("date_inactive", "invalid date %q, expected YYYY-MM-DD", in.DateInactive)
		}
		dateInactive = &parsed
	}

	if in.AssignedByID != nil {
		var assigner models.Participant
		if err := s.db.First(&assigner, *in.AssignedByID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationErr("assigned_by", "assigner not found")
			}
			return nil, err
		}
		if assigner.Role != models.RoleAdmin && assigner.Role != models.RoleModerator {
			return nil, validationErr("assigned_by", "assigner must be an admin or moderator")
		}
	}

	for _, phone := range in.Phones {
		if !models.PhoneNumberPattern.MatchString(phone.Number) {
			return nil, validationErr("phone", "invalid phone number %q", phone.Number)
		}
	}

	for _, email := range in.Emails {
		if _, err := mail.ParseAddress(email.Address); err != nil {
			return nil, validationErr("email", "invalid email address %q", email.Address)
		}
	}

	for recordType := range in.trackedValues() {
		if !models.ValidRecordType(recordType) {
			return nil, validationErr("record_type", "unknown record type %q", recordType)
		}
	}

	return dateInactive, nil
}

// Create validates the full submission and persists the participant, its
// contacts and the initial historical records in one transaction.
func (s *ParticipantService) Create(in *ParticipantInput) (*models.Participant, error) {
	dateInactive, err := s.validate(in, nil)
	if err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	participant := models.Participant{
		Username:     in.Username,
		Password:     hashed,
		Nickname:     in.Nickname,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       in.Status,
		DateInactive: dateInactive,
		Role:         in.Role,
		AssignedByID: in.AssignedByID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		for _, phone := range in.Phones {
			p := models.Phone{ParticipantID: participant.ID, Number: phone.Number}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		for _, email := range in.Emails {
			e := models.Email{ParticipantID: participant.ID, Address: email.Address}
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
		}

		return s.history.Record(tx, participant.ID, in.trackedValues())
	})
	if err != nil {
		return nil, err
	}

	return s.Get(participant.ID)
}

// Update validates and applies an edit. An empty password keeps the stored
// hash. Contacts are synced against the submitted sets: rows with a known id
// are updated, new rows created, absent rows deleted.
func (s *ParticipantService) Update(id uint, in *ParticipantInput) (*models.Participant, error) {
	var participant models.Participant
	if err := s.db.First(&participant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	dateInactive, err := s.validate(in, &participant)
	if err != nil {
		return nil, err
	}

	participant.Username = in.Username
	participant.Nickname = in.Nickname
	participant.FirstName = in.FirstName
	participant.LastName = in.LastName
	participant.Status = in.Status
	participant.DateInactive = dateInactive
	participant.Role = in.Role
	participant.AssignedByID = in.AssignedByID

	if in.Password != "" {
		hashed, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		participant.Password = hashed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&participant).Error; err != nil {
			return err
		}
		if err := syncPhones(tx, participant.ID, in.Phones); err != nil {
			return err
		}
		if err := syncEmails(tx, participant.ID, in.Emails); err != nil {
			return err
		}
		return s.history.Record(tx, participant.ID, in.trackedValues())
	})
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

// syncPhones reconciles the stored phone set with the submitted one.
func syncPhones(tx *gorm.DB, participantID uint, inputs []PhoneInput) error {
	keep := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.ID != 0 {
			keep = append(keep, in.ID)
		}
	}

	del := tx.Where("participant_id = ?", participantID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.Phone{}).Error; err != nil {
		return err
	}

	for _, in := range inputs {
		if in.ID != 0 {
			if err := tx.Model(&models.Phone{}).
				Where("id = ? AND participant_id = ?", in.ID, participantID).
				Update("number", in.Number).Error; err != nil {
				return err
			}
			continue
		}
		phone := models.Phone{ParticipantID: participantID, Number: in.Number}
		if err := tx.Create(&phone).Error; err != nil {
			return err
		}
	}

	return nil
}

// syncEmails reconciles the stored email set with the submitted one.
func syncEmails(tx *gorm.DB, participantID uint, inputs []EmailInput) error {
	keep := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.ID != 0 {
			keep = append(keep, in.ID)
		}
	}

	del := tx.Where("participant_id = ?", participantID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.Email{}).Error; err != nil {
		return err
	}

	for _, in := range inputs {
		if in.ID != 0 {
			if err := tx.Model(&models.Email{}).
				Where("id = ? AND participant_id = ?", in.ID, participantID).
				Update("address", in.Address).Error; err != nil {
				return err
			}
			continue
		}
		email := models.Email{ParticipantID: participantID, Address: in.Address}
		if err := tx.Create(&email).Error; err != nil {
			return err
		}
	}

	return nil
}

// Get loads a participant with contacts and full history (newest first).
func (s *ParticipantService) Get(id uint) (*models.Participant, error) {
	var participant models.Participant
	err := s.db.
		Preload("Phones").
		Preload("Emails").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at DESC, id DESC")
		}).
		First(&participant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// CurrentValues returns the latest historical value per tracked type.
func (s *ParticipantService) CurrentValues(id uint) (map[string]string, error) {
	return s.history.Latest(id)
}

// Delete removes a participant and all owned phones, emails, history and
// refresh tokens in one transaction.
func (s *ParticipantService) Delete(id uint) error {
	var participant models.Participant
	if err := s.db.First(&participant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", id).Delete(&models.Phone{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", id).Delete(&models.Email{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", id).Delete(&models.HistoricalRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&participant).Error
	})
}

// UpdateAvatar records the stored file path of an uploaded avatar.
func (s *ParticipantService) UpdateAvatar(id uint, path string) error {
	result := s.db.Model(&models.Participant{}).Where("id = ?", id).Update("avatar", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
