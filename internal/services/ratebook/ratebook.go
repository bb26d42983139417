package ratebook

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/apperr"
	"timecore/internal/models"
)

// Rate precedence: a per-person staff rate always wins, then the task-type
// rate, then the client rate. No match means the entry stays unpriced and
// needs manual pricing downstream.
const (
	SourceStaff    = "staff"
	SourceTaskType = "task_type"
	SourceClient   = "client"
)

type Resolution struct {
	HourlyRate float64 `json:"hourly_rate"`
	Source     string  `json:"source"`
	Resolved   bool    `json:"resolved"`
}

type Service struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Service {
	return &Service{db: db, lg: lg}
}

type rateRow struct {
	HourlyRate    float64
	EffectiveFrom *time.Time
}

// bestRate picks, among rows effective at asOf, the one with the latest
// EffectiveFrom; a dated rate beats an undated one.
func bestRate(rows []rateRow, asOf time.Time) (float64, bool) {
	var best *rateRow
	for i := range rows {
		r := &rows[i]
		if r.EffectiveFrom != nil && r.EffectiveFrom.After(asOf) {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		switch {
		case best.EffectiveFrom == nil && r.EffectiveFrom != nil:
			best = r
		case best.EffectiveFrom != nil && r.EffectiveFrom != nil && r.EffectiveFrom.After(*best.EffectiveFrom):
			best = r
		}
	}
	if best == nil {
		return 0, false
	}
	return best.HourlyRate, true
}

func (s *Service) lookup(ctx context.Context, model any, cond string, args ...any) ([]rateRow, error) {
	var rows []rateRow
	err := s.db.WithContext(ctx).Model(model).
		Select("hourly_rate", "effective_from").
		Where(cond, args...).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("rate lookup", err)
	}
	return rows, nil
}

// Resolve walks the precedence chain for the given subjects at asOf.
func (s *Service) Resolve(ctx context.Context, tenantID, userID string, taskID, clientID *string, asOf time.Time) (Resolution, error) {
	rows, err := s.lookup(ctx, &models.StaffRate{}, "tenant_id = ? AND user_id = ?", tenantID, userID)
	if err != nil {
		return Resolution{}, err
	}
	if rate, ok := bestRate(rows, asOf); ok {
		return Resolution{HourlyRate: rate, Source: SourceStaff, Resolved: true}, nil
	}
	if taskID != nil {
		rows, err = s.lookup(ctx, &models.TaskTypeRate{}, "tenant_id = ? AND task_type_id = ?", tenantID, *taskID)
		if err != nil {
			return Resolution{}, err
		}
		if rate, ok := bestRate(rows, asOf); ok {
			return Resolution{HourlyRate: rate, Source: SourceTaskType, Resolved: true}, nil
		}
	}
	if clientID != nil {
		rows, err = s.lookup(ctx, &models.ClientRate{}, "tenant_id = ? AND client_id = ?", tenantID, *clientID)
		if err != nil {
			return Resolution{}, err
		}
		if rate, ok := bestRate(rows, asOf); ok {
			return Resolution{HourlyRate: rate, Source: SourceClient, Resolved: true}, nil
		}
	}
	return Resolution{}, nil
}

// Amount converts seconds at an hourly rate into a currency amount, rounded
// half-up to two decimals.
func Amount(durationSeconds int64, hourlyRate float64) float64 {
	return math.Round(float64(durationSeconds)/3600*hourlyRate*100) / 100
}

// Price fills RateApplied and BillableAmount on the entry in place.
// Non-billable entries always price to zero; unresolved billable entries
// stay nil so invoicing can flag them for manual pricing.
func (s *Service) Price(ctx context.Context, entry *models.TimeEntry) error {
	if entry.Type == models.EntryNonBillable {
		zero := 0.0
		entry.RateApplied = nil
		entry.BillableAmount = &zero
		return nil
	}
	res, err := s.Resolve(ctx, entry.TenantID, entry.UserID, entry.TaskID, entry.ClientID, entry.StartTime)
	if err != nil {
		return err
	}
	if !res.Resolved {
		entry.RateApplied = nil
		entry.BillableAmount = nil
		return nil
	}
	rate := res.HourlyRate
	amount := Amount(entry.DurationSeconds, rate)
	entry.RateApplied = &rate
	entry.BillableAmount = &amount
	return nil
}
