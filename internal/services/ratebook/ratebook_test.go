package ratebook

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timecore/internal/models"
	"timecore/internal/testdb"
)

const tenant = "11111111-1111-1111-1111-111111111111"

func newService(t *testing.T) *Service {
	t.Helper()
	return New(testdb.New(t), zap.NewNop().Sugar())
}

func seedStaffRate(t *testing.T, s *Service, userID string, rate float64, from *time.Time) {
	t.Helper()
	err := s.db.Create(&models.StaffRate{
		ID: uuid.NewString(), TenantID: tenant, UserID: userID,
		HourlyRate: rate, EffectiveFrom: from,
	}).Error
	if err != nil {
		t.Fatalf("seed staff rate: %v", err)
	}
}

func TestResolvePrecedence(t *testing.T) {
	s := newService(t)
	user := uuid.NewString()
	task := uuid.NewString()
	client := uuid.NewString()

	seedStaffRate(t, s, user, 100, nil)
	if err := s.db.Create(&models.TaskTypeRate{ID: uuid.NewString(), TenantID: tenant, TaskTypeID: task, HourlyRate: 80}).Error; err != nil {
		t.Fatal(err)
	}
	if err := s.db.Create(&models.ClientRate{ID: uuid.NewString(), TenantID: tenant, ClientID: client, HourlyRate: 60}).Error; err != nil {
		t.Fatal(err)
	}

	res, err := s.Resolve(context.Background(), tenant, user, &task, &client, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Resolved || res.HourlyRate != 100 || res.Source != SourceStaff {
		t.Fatalf("staff rate must win: %+v", res)
	}

	// Without a staff rate the task-type rate applies, then the client rate.
	otherUser := uuid.NewString()
	res, err = s.Resolve(context.Background(), tenant, otherUser, &task, &client, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.HourlyRate != 80 || res.Source != SourceTaskType {
		t.Fatalf("task-type rate expected: %+v", res)
	}

	res, err = s.Resolve(context.Background(), tenant, otherUser, nil, &client, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.HourlyRate != 60 || res.Source != SourceClient {
		t.Fatalf("client rate expected: %+v", res)
	}

	res, err = s.Resolve(context.Background(), tenant, otherUser, nil, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.Resolved {
		t.Fatalf("expected unresolved, got %+v", res)
	}
}

func TestResolveTenantScoped(t *testing.T) {
	s := newService(t)
	user := uuid.NewString()
	seedStaffRate(t, s, user, 100, nil)

	res, err := s.Resolve(context.Background(), uuid.NewString(), user, nil, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res.Resolved {
		t.Fatal("rate leaked across tenants")
	}
}

func TestResolveEffectiveFrom(t *testing.T) {
	s := newService(t)
	user := uuid.NewString()
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	past := asOf.AddDate(0, -1, 0)
	older := asOf.AddDate(0, -6, 0)
	future := asOf.AddDate(0, 1, 0)

	seedStaffRate(t, s, user, 90, nil)
	seedStaffRate(t, s, user, 110, &older)
	seedStaffRate(t, s, user, 120, &past)
	seedStaffRate(t, s, user, 150, &future)

	res, err := s.Resolve(context.Background(), tenant, user, nil, nil, asOf)
	if err != nil {
		t.Fatal(err)
	}
	if res.HourlyRate != 120 {
		t.Fatalf("latest effective rate expected 120, got %v", res.HourlyRate)
	}
}

func TestAmountRounding(t *testing.T) {
	cases := []struct {
		seconds int64
		rate    float64
		want    float64
	}{
		{1800, 120, 60},
		{1800, 120.50, 60.25},
		{1000, 100, 27.78}, // 27.777... rounds up, not truncates
		{1, 100, 0.03},     // 0.0277...
		{0, 100, 0},
	}
	for _, c := range cases {
		if got := Amount(c.seconds, c.rate); got != c.want {
			t.Errorf("Amount(%d, %v) = %v, want %v", c.seconds, c.rate, got, c.want)
		}
	}
}

func TestPrice(t *testing.T) {
	s := newService(t)
	user := uuid.NewString()
	seedStaffRate(t, s, user, 120, nil)

	entry := models.TimeEntry{
		TenantID: tenant, UserID: user,
		StartTime: time.Now(), DurationSeconds: 1800,
		Type: models.EntryBillable,
	}
	if err := s.Price(context.Background(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.RateApplied == nil || *entry.RateApplied != 120 {
		t.Fatalf("rate_applied = %v, want 120", entry.RateApplied)
	}
	if entry.BillableAmount == nil || *entry.BillableAmount != 60 {
		t.Fatalf("billable_amount = %v, want 60", entry.BillableAmount)
	}

	entry.Type = models.EntryNonBillable
	if err := s.Price(context.Background(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.BillableAmount == nil || *entry.BillableAmount != 0 {
		t.Fatalf("non-billable entries must price to zero, got %v", entry.BillableAmount)
	}
	if entry.RateApplied != nil {
		t.Fatalf("non-billable entries carry no rate, got %v", *entry.RateApplied)
	}

	unpriced := models.TimeEntry{
		TenantID: tenant, UserID: uuid.NewString(),
		StartTime: time.Now(), DurationSeconds: 3600,
		Type: models.EntryBillable,
	}
	if err := s.Price(context.Background(), &unpriced); err != nil {
		t.Fatal(err)
	}
	if unpriced.BillableAmount != nil || unpriced.RateApplied != nil {
		t.Fatal("entry without any applicable rate must stay unpriced")
	}
}
