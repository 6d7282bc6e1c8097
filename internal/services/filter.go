package services

import (
	"strings"

	"github.com/huangang/bigbrother/internal/models"
	"gorm.io/gorm"
)

// ParticipantListRequest carries the optional search criteria of the list
// view. Empty fields contribute nothing; an all-empty request returns the
// unfiltered store.
type ParticipantListRequest struct {
	Query      string `form:"q"`
	AssignedBy *uint  `form:"assigned_by"`
	FirstName  string `form:"first_name"`
	LastName   string `form:"last_name"`
	Nickname   string `form:"nickname"`
	Phone      string `form:"phone"`
	Email      string `form:"email"`
	Status     string `form:"status"`

	Activity        string `form:"activity"`
	ActivityAddress string `form:"activity_address"`
	Job             string `form:"job"`
	JobAddress      string `form:"job_address"`
	Address         string `form:"address"`

	Page int `form:"page"`
}

// Assigner is a participant allowed to appear in the assigned_by filter.
type Assigner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

type ParticipantListResponse struct {
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	IsFiltered bool                 `json:"is_filtered"`
	Items      []models.Participant `json:"items"`
	Assigners  []Assigner           `json:"assigners"`
}

// contains builds a case-insensitive substring condition on a column.
func contains(query *gorm.DB, column, value string) *gorm.DB {
	return query.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

// List composes a single predicate from the supplied criteria and returns one
// page of matches. Criteria against related rows (phones, emails, history)
// are expressed as id-subqueries so a participant matching through several
// related rows still appears once.
func (s *ParticipantService) List(req *ParticipantListRequest) (*ParticipantListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}

	query := s.db.Model(&models.Participant{})
	filtered := false

	if req.Query != "" {
		filtered = true
		term := "%" + strings.ToLower(req.Query) + "%"
		phoneSub := s.db.Model(&models.Phone{}).Select("participant_id").
			Where("LOWER(number) LIKE ?", term)
		emailSub := s.db.Model(&models.Email{}).Select("participant_id").
			Where("LOWER(address) LIKE ?", term)
		historySub := s.db.Model(&models.HistoricalRecord{}).Select("participant_id").
			Where("LOWER(value) LIKE ? OR LOWER(record_type) LIKE ?", term, term)

		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(nickname) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?"+
				" OR id IN (?) OR id IN (?) OR id IN (?)",
			term, term, term, term, phoneSub, emailSub, historySub,
		)
	}

	if req.AssignedBy != nil {
		filtered = true
		query = query.Where("assigned_by_id = ?", *req.AssignedBy)
	}
	if req.FirstName != "" {
		filtered = true
		query = contains(query, "first_name", req.FirstName)
	}
	if req.LastName != "" {
		filtered = true
		query = contains(query, "last_name", req.LastName)
	}
	if req.Nickname != "" {
		filtered = true
		query = contains(query, "nickname", req.Nickname)
	}
	if req.Phone != "" {
		filtered = true
		sub := s.db.Model(&models.Phone{}).Select("participant_id").
			Where("LOWER(number) LIKE ?", "%"+strings.ToLower(req.Phone)+"%")
		query = query.Where("id IN (?)", sub)
	}
	if req.Email != "" {
		filtered = true
		sub := s.db.Model(&models.Email{}).Select("participant_id").
			Where("LOWER(address) LIKE ?", "%"+strings.ToLower(req.Email)+"%")
		query = query.Where("id IN (?)", sub)
	}
	if req.Status != "" {
		filtered = true
		query = query.Where("status = ?", req.Status)
	}

	historyCriteria := map[string]string{
		models.RecordActivity:        req.Activity,
		models.RecordActivityAddress: req.ActivityAddress,
		models.RecordJob:             req.Job,
		models.RecordJobAddress:      req.JobAddress,
		models.RecordAddress:         req.Address,
	}
	for _, recordType := range models.TrackedRecordTypes {
		value := historyCriteria[recordType]
		if value == "" {
			continue
		}
		filtered = true
		sub := s.db.Model(&models.HistoricalRecord{}).Select("participant_id").
			Where("record_type = ? AND LOWER(value) LIKE ?", recordType, "%"+strings.ToLower(value)+"%")
		query = query.Where("id IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var participants []models.Participant
	offset := (req.Page - 1) * ListPageSize
	if err := query.
		Preload("Phones").
		Preload("Emails").
		Order("id ASC").
		Offset(offset).
		Limit(ListPageSize).
		Find(&participants).Error; err != nil {
		return nil, err
	}

	assigners, err := s.Assigners()
	if err != nil {
		return nil, err
	}

	return &ParticipantListResponse{
		Total:      total,
		Page:       req.Page,
		PageSize:   ListPageSize,
		IsFiltered: filtered,
		Items:      participants,
		Assigners:  assigners,
	}, nil
}

// Assigners returns participants whose role allows them to assign others.
func (s *ParticipantService) Assigners() ([]Assigner, error) {
	var assigners []Assigner
	err := s.db.Model(&models.Participant{}).
		Select("id, username, nickname").
		Where("role IN ?", models.AssignerRoles).
		Order("username ASC").
		Scan(&assigners).Error
	return assigners, err
}
