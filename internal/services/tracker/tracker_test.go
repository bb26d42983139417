package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timecore/internal/apperr"
	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/services/ratebook"
	"timecore/internal/testdb"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testdb.New(t)
	lg := zap.NewNop().Sugar()
	return New(db, lg, ratebook.New(db, lg))
}

func staffCaller() auth.Caller {
	return auth.Caller{UserID: uuid.NewString(), TenantID: uuid.NewString(), Role: auth.RoleStaff}
}

func TestStartOneActiveSession(t *testing.T) {
	s := newService(t)
	caller := staffCaller()

	sess, err := s.Start(context.Background(), caller, StartInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !sess.IsActive {
		t.Fatal("new session not active")
	}

	_, err = s.Start(context.Background(), caller, StartInput{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("second start must conflict, got %v", err)
	}

	// A different user is unaffected.
	if _, err := s.Start(context.Background(), staffCaller(), StartInput{}); err != nil {
		t.Fatalf("other user blocked: %v", err)
	}
}

func TestActive(t *testing.T) {
	s := newService(t)
	caller := staffCaller()

	got, err := s.Active(context.Background(), caller)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected no active session")
	}

	sess, err := s.Start(context.Background(), caller, StartInput{})
	if err != nil {
		t.Fatal(err)
	}
	got, err = s.Active(context.Background(), caller)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != sess.ID {
		t.Fatalf("active session mismatch: %+v", got)
	}
}

func TestStopCreatesDraftEntry(t *testing.T) {
	s := newService(t)
	caller := staffCaller()

	start := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	err := s.db.Create(&models.StaffRate{
		ID: uuid.NewString(), TenantID: caller.TenantID, UserID: caller.UserID, HourlyRate: 120,
	}).Error
	if err != nil {
		t.Fatal(err)
	}

	client := uuid.NewString()
	sess, err := s.Start(context.Background(), caller, StartInput{ClientID: &client})
	if err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return start.Add(30 * time.Minute) }
	entry, err := s.Stop(context.Background(), caller, sess.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if entry.DurationSeconds != 1800 {
		t.Fatalf("duration = %d, want 1800", entry.DurationSeconds)
	}
	if entry.Status != models.StatusDraft {
		t.Fatalf("status = %s, want draft", entry.Status)
	}
	if entry.BillableAmount == nil || *entry.BillableAmount != 60 {
		t.Fatalf("billable_amount = %v, want 60.00", entry.BillableAmount)
	}
	if entry.ClientID == nil || *entry.ClientID != client {
		t.Fatal("session metadata not copied onto the entry")
	}

	// Session is deactivated and a new timer may start.
	if got, _ := s.Active(context.Background(), caller); got != nil {
		t.Fatal("session still active after stop")
	}
	if _, err := s.Start(context.Background(), caller, StartInput{}); err != nil {
		t.Fatalf("restart after stop failed: %v", err)
	}

	var rec models.AuditRecord
	if err := s.db.First(&rec, "time_entry_id = ?", entry.ID).Error; err != nil {
		t.Fatalf("no audit record for created entry: %v", err)
	}
	if rec.Action != models.ActionCreate {
		t.Fatalf("audit action = %s, want create", rec.Action)
	}
}

func TestStopForeignSessionNotFound(t *testing.T) {
	s := newService(t)
	owner := staffCaller()
	sess, err := s.Start(context.Background(), owner, StartInput{})
	if err != nil {
		t.Fatal(err)
	}

	// Same tenant, different user.
	other := auth.Caller{UserID: uuid.NewString(), TenantID: owner.TenantID, Role: auth.RoleStaff}
	if _, err := s.Stop(context.Background(), other, sess.ID, nil); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("foreign user stop: got %v, want not found", err)
	}

	// Same user id, different tenant.
	crossTenant := auth.Caller{UserID: owner.UserID, TenantID: uuid.NewString(), Role: auth.RoleStaff}
	if _, err := s.Stop(context.Background(), crossTenant, sess.ID, nil); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("cross-tenant stop: got %v, want not found", err)
	}
}

func TestStopNotes(t *testing.T) {
	s := newService(t)
	caller := staffCaller()
	desc := "weekly review"
	sess, err := s.Start(context.Background(), caller, StartInput{Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	notes := "reviewed Q1 ledgers"
	entry, err := s.Stop(context.Background(), caller, sess.ID, &notes)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Description == nil || *entry.Description != notes {
		t.Fatalf("stop notes must replace the description, got %v", entry.Description)
	}
}
