package billing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/apperr"
	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/services/journal"
)

// Service is the handoff surface to invoicing: approved, unbilled entries go
// out, billed flags come back.
type Service struct {
	db  *gorm.DB
	lg  *zap.SugaredLogger
	now func() time.Time
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Service {
	return &Service{db: db, lg: lg, now: time.Now}
}

// UnbilledGroup batches a client's approved, unbilled entries for invoicing.
// Entries without a client (or without a resolved amount) still appear so
// nothing silently drops off the invoice run.
type UnbilledGroup struct {
	ClientID    *string            `json:"client_id"`
	TotalHours  float64            `json:"total_hours"`
	TotalAmount float64            `json:"total_amount"`
	Entries     []models.TimeEntry `json:"entries"`
}

func (s *Service) Unbilled(ctx context.Context, caller auth.Caller) ([]UnbilledGroup, error) {
	var entries []models.TimeEntry
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND is_billed = ?", caller.TenantID, models.StatusApproved, false).
		Order("client_id asc, start_time asc").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Internal("load unbilled entries", err)
	}
	groups := []UnbilledGroup{}
	index := map[string]int{}
	for _, e := range entries {
		key := ""
		if e.ClientID != nil {
			key = *e.ClientID
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, UnbilledGroup{ClientID: e.ClientID})
		}
		groups[i].TotalHours += float64(e.DurationSeconds) / 3600
		if e.BillableAmount != nil {
			groups[i].TotalAmount += *e.BillableAmount
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups, nil
}

// MarkBilled flags the given approved entries as billed. Idempotent: ids that
// are already billed, unknown, or outside the tenant are skipped, not errors.
// Status never changes here.
func (s *Service) MarkBilled(ctx context.Context, caller auth.Caller, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("entry_ids is required")
	}
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eligible []string
		err := tx.Model(&models.TimeEntry{}).
			Where("tenant_id = ? AND id IN ? AND status = ? AND is_billed = ?",
				caller.TenantID, ids, models.StatusApproved, false).
			Pluck("id", &eligible).Error
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			return nil
		}
		now := s.now()
		res := tx.Model(&models.TimeEntry{}).
			Where("tenant_id = ? AND id IN ?", caller.TenantID, eligible).
			Updates(map[string]any{"is_billed": true, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		for _, id := range eligible {
			if err := journal.Append(tx, &models.AuditRecord{
				TimeEntryID: id,
				TenantID:    caller.TenantID,
				ActorID:     caller.UserID,
				Action:      models.ActionMarkBilled,
				OccurredAt:  now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Internal("mark billed", err)
	}
	return count, nil
}
