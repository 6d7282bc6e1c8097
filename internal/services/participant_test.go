package services

import (
	"errors"
	"testing"

	"github.com/huangang/bigbrother/internal/models"
	"github.com/huangang/bigbrother/internal/utils"
)

func validInput(username string) *ParticipantInput {
	return &ParticipantInput{
		Username:        username,
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Nickname:        "Nick " + username,
	}
}

func TestParticipantCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	in := validInput("alice")
	in.FirstName = "Alice"
	in.LastName = "Smith"
	in.Phones = []PhoneInput{{Number: "+12025550123"}}
	in.Emails = []EmailInput{{Address: "alice@example.com"}}
	in.Job = "Engineer"
	in.Address = "12 Main St"

	p, err := svc.Create(in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.ID == 0 {
		t.Error("created participant should have an id")
	}
	if p.Status != models.StatusActive {
		t.Errorf("status should default to active, got %q", p.Status)
	}
	if p.Role != models.RoleSimple {
		t.Errorf("role should default to simple, got %q", p.Role)
	}
	if len(p.Phones) != 1 || p.Phones[0].Number != "+12025550123" {
		t.Errorf("unexpected phones: %+v", p.Phones)
	}
	if len(p.Emails) != 1 || p.Emails[0].Address != "alice@example.com" {
		t.Errorf("unexpected emails: %+v", p.Emails)
	}
	if len(p.History) != 2 {
		t.Errorf("expected 2 initial history records, got %d", len(p.History))
	}
	if !utils.CheckPassword("secret123", p.Password) {
		t.Error("stored password should be a verifiable hash")
	}
}

func TestParticipantCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	simple := createParticipant(t, db, &models.Participant{Username: "plain", Nickname: "Plain"})
	admin := createParticipant(t, db, &models.Participant{Username: "boss", Nickname: "Boss", Role: models.RoleAdmin})
	createParticipant(t, db, &models.Participant{Username: "taken", Nickname: "Taken"})

	tests := []struct {
		name   string
		mutate func(in *ParticipantInput)
		field  string
	}{
		{"missing username", func(in *ParticipantInput) { in.Username = "" }, "username"},
		{"missing nickname", func(in *ParticipantInput) { in.Nickname = "" }, "nickname"},
		{"duplicate username", func(in *ParticipantInput) { in.Username = "taken" }, "username"},
		{"missing password", func(in *ParticipantInput) { in.Password = ""; in.ConfirmPassword = "" }, "password"},
		{"password mismatch", func(in *ParticipantInput) { in.ConfirmPassword = "different" }, "confirm_password"},
		{"invalid status", func(in *ParticipantInput) { in.Status = "paused" }, "status"},
		{"invalid role", func(in *ParticipantInput) { in.Role = "superuser" }, "role"},
		{"bad inactive date", func(in *ParticipantInput) { in.DateInactive = "31-12-2025" }, "date_inactive"},
		{"assigner not found", func(in *ParticipantInput) { id := uint(9999); in.AssignedByID = &id }, "assigned_by"},
		{"assigner is simple", func(in *ParticipantInput) { in.AssignedByID = &simple.ID }, "assigned_by"},
		{"invalid phone", func(in *ParticipantInput) { in.Phones = []PhoneInput{{Number: "abc"}} }, "phone"},
		{"invalid email", func(in *ParticipantInput) { in.Emails = []EmailInput{{Address: "not-an-email"}} }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("newuser")
			tt.mutate(in)

			_, err := svc.Create(in)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, expected %q", verr.Field, tt.field)
			}
		})
	}

	// Admin assigner is accepted.
	in := validInput("assigned")
	in.AssignedByID = &admin.ID
	if _, err := svc.Create(in); err != nil {
		t.Errorf("admin assigner should be valid: %v", err)
	}

	// Nothing from the failed submissions should have been persisted.
	var count int64
	db.Model(&models.Participant{}).Where("username = ?", "newuser").Count(&count)
	if count != 0 {
		t.Error("failed creates must not persist anything")
	}
}

func TestParticipantUpdate_EmptyPasswordKeepsHash(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	created, err := svc.Create(validInput("alice"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	in := validInput("alice")
	in.Password = ""
	in.ConfirmPassword = ""
	in.Nickname = "Renamed"

	updated, err := svc.Update(created.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Nickname != "Renamed" {
		t.Errorf("nickname = %q, expected Renamed", updated.Nickname)
	}
	if updated.Password != created.Password {
		t.Error("empty password submission must keep the stored hash")
	}
	if !utils.CheckPassword("secret123", updated.Password) {
		t.Error("original password should still verify")
	}
}

func TestParticipantUpdate_ChangesPasswordWhenSupplied(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	created, err := svc.Create(validInput("alice"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	in := validInput("alice")
	in.Password = "newsecret"
	in.ConfirmPassword = "newsecret"

	updated, err := svc.Update(created.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !utils.CheckPassword("newsecret", updated.Password) {
		t.Error("new password should verify")
	}
	if utils.CheckPassword("secret123", updated.Password) {
		t.Error("old password should no longer verify")
	}
}

func TestParticipantUpdate_SyncsContacts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	in := validInput("alice")
	in.Phones = []PhoneInput{{Number: "+12025550123"}, {Number: "+12025550124"}}
	in.Emails = []EmailInput{{Address: "a@example.com"}}
	created, err := svc.Create(in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Keep the first phone (edited), drop the second, add a new one; replace
	// the email set entirely.
	edit := validInput("alice")
	edit.Password = ""
	edit.ConfirmPassword = ""
	edit.Phones = []PhoneInput{
		{ID: created.Phones[0].ID, Number: "+12025559999"},
		{Number: "+12025550125"},
	}
	edit.Emails = []EmailInput{{Address: "b@example.com"}}

	updated, err := svc.Update(created.ID, edit)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(updated.Phones) != 2 {
		t.Fatalf("expected 2 phones, got %d", len(updated.Phones))
	}
	numbers := map[string]bool{}
	for _, ph := range updated.Phones {
		numbers[ph.Number] = true
	}
	if !numbers["+12025559999"] || !numbers["+12025550125"] {
		t.Errorf("unexpected phone set: %+v", updated.Phones)
	}
	if numbers["+12025550124"] {
		t.Error("dropped phone should be deleted")
	}

	if len(updated.Emails) != 1 || updated.Emails[0].Address != "b@example.com" {
		t.Errorf("unexpected email set: %+v", updated.Emails)
	}
}

func TestParticipantUpdate_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	if _, err := svc.Update(9999, validInput("ghost")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantUpdate_DuplicateUsernameExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	created, err := svc.Create(validInput("alice"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Resubmitting the participant's own username is not a conflict.
	in := validInput("alice")
	in.Password = ""
	in.ConfirmPassword = ""
	if _, err := svc.Update(created.ID, in); err != nil {
		t.Errorf("own username should not count as duplicate: %v", err)
	}
}

func TestParticipantDelete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	in := validInput("alice")
	in.Phones = []PhoneInput{{Number: "+12025550123"}}
	in.Emails = []EmailInput{{Address: "alice@example.com"}}
	in.Job = "Engineer"
	created, err := svc.Create(in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	db.Create(&models.RefreshToken{ParticipantID: created.ID, TokenHash: "h", ExpiresAt: created.CreatedAt})

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	checks := []struct {
		name  string
		model interface{}
	}{
		{"phones", &models.Phone{}},
		{"emails", &models.Email{}},
		{"history", &models.HistoricalRecord{}},
		{"refresh tokens", &models.RefreshToken{}},
	}
	for _, c := range checks {
		var count int64
		db.Model(c.model).Where("participant_id = ?", created.ID).Count(&count)
		if count != 0 {
			t.Errorf("%s should be deleted with the participant, %d remain", c.name, count)
		}
	}

	if _, err := svc.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted participant should be gone, got %v", err)
	}
}

func TestParticipantDelete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	if err := svc.Delete(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantGet_HistoryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	in := validInput("alice")
	in.Job = "Engineer"
	created, err := svc.Create(in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	edit := validInput("alice")
	edit.Password = ""
	edit.ConfirmPassword = ""
	edit.Job = "Manager"
	if _, err := svc.Update(created.ID, edit); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.History) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(got.History))
	}
	if got.History[0].Value != "Manager" {
		t.Errorf("history should be newest first, got %q", got.History[0].Value)
	}

	values, err := svc.CurrentValues(created.ID)
	if err != nil {
		t.Fatalf("CurrentValues() error = %v", err)
	}
	if values[models.RecordJob] != "Manager" {
		t.Errorf("current job = %q, expected Manager", values[models.RecordJob])
	}
}

func TestUpdateAvatar(t *testing.T) {
	db := setupTestDB(t)
	svc := NewParticipantService(db)

	created, err := svc.Create(validInput("alice"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.UpdateAvatar(created.ID, "data/avatars/abc.png"); err != nil {
		t.Fatalf("UpdateAvatar() error = %v", err)
	}

	got, _ := svc.Get(created.ID)
	if got.Avatar != "data/avatars/abc.png" {
		t.Errorf("avatar = %q", got.Avatar)
	}

	if err := svc.UpdateAvatar(9999, "x.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
