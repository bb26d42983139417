package reporting

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"timecore/internal/apperr"
	"timecore/internal/models"
)

// Service is the read-only rollup side. Everything is scoped to a tenant and
// an optional [from, to] window over entry start times; nothing here writes.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Window struct {
	From *time.Time
	To   *time.Time
}

type GroupRow struct {
	Key            *string `gorm:"column:group_key" json:"key"`
	TotalHours     float64 `gorm:"column:total_hours" json:"total_hours"`
	BillableHours  float64 `gorm:"column:billable_hours" json:"billable_hours"`
	BillableAmount float64 `gorm:"column:billable_amount" json:"billable_amount"`
	EntryCount     int64   `gorm:"column:entry_count" json:"entry_count"`
}

func (s *Service) base(ctx context.Context, tenantID string, w Window) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.TimeEntry{}).Where("tenant_id = ?", tenantID)
	if w.From != nil {
		q = q.Where("start_time >= ?", *w.From)
	}
	if w.To != nil {
		q = q.Where("start_time <= ?", *w.To)
	}
	return q
}

func (s *Service) groupBy(ctx context.Context, tenantID string, w Window, column string) ([]GroupRow, error) {
	var rows []GroupRow
	err := s.base(ctx, tenantID, w).
		Select(column+` AS group_key,
			COALESCE(SUM(duration_seconds), 0) / 3600.0 AS total_hours,
			COALESCE(SUM(CASE WHEN type = ? THEN duration_seconds ELSE 0 END), 0) / 3600.0 AS billable_hours,
			COALESCE(SUM(COALESCE(billable_amount, 0)), 0) AS billable_amount,
			COUNT(*) AS entry_count`, models.EntryBillable).
		Group(column).
		Order(column + " asc").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("aggregate entries", err)
	}
	for i := range rows {
		rows[i].TotalHours = round2(rows[i].TotalHours)
		rows[i].BillableHours = round2(rows[i].BillableHours)
		rows[i].BillableAmount = round2(rows[i].BillableAmount)
	}
	return rows, nil
}

func (s *Service) ByClient(ctx context.Context, tenantID string, w Window) ([]GroupRow, error) {
	return s.groupBy(ctx, tenantID, w, "client_id")
}

func (s *Service) ByStaff(ctx context.Context, tenantID string, w Window) ([]GroupRow, error) {
	return s.groupBy(ctx, tenantID, w, "user_id")
}

func (s *Service) ByProject(ctx context.Context, tenantID string, w Window) ([]GroupRow, error) {
	return s.groupBy(ctx, tenantID, w, "project_id")
}

type BillableComparison struct {
	TotalHours         float64 `json:"total_hours"`
	BillableHours      float64 `json:"billable_hours"`
	NonBillableHours   float64 `json:"non_billable_hours"`
	BillablePercentage float64 `json:"billable_percentage"`
}

// BillableComparison splits tracked hours by billability. The percentage is
// 0 when no hours were tracked; negative sums (impossible under the duration
// invariant, but not trusted) clamp to 0 rather than producing a nonsense
// ratio.
func (s *Service) BillableComparison(ctx context.Context, tenantID string, w Window) (BillableComparison, error) {
	var row struct {
		TotalHours    float64 `gorm:"column:total_hours"`
		BillableHours float64 `gorm:"column:billable_hours"`
	}
	err := s.base(ctx, tenantID, w).
		Select(`COALESCE(SUM(duration_seconds), 0) / 3600.0 AS total_hours,
			COALESCE(SUM(CASE WHEN type = ? THEN duration_seconds ELSE 0 END), 0) / 3600.0 AS billable_hours`,
			models.EntryBillable).
		Scan(&row).Error
	if err != nil {
		return BillableComparison{}, apperr.Internal("aggregate entries", err)
	}
	total := math.Max(row.TotalHours, 0)
	billable := math.Max(row.BillableHours, 0)
	out := BillableComparison{
		TotalHours:       round2(total),
		BillableHours:    round2(billable),
		NonBillableHours: round2(total - billable),
	}
	if total > 0 {
		out.BillablePercentage = round2(billable / total * 100)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
