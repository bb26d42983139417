package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/apperr"
	"timecore/internal/auth"
	"timecore/internal/models"
)

// Append writes one audit record on tx, so a transition and its trail commit
// together. Records are never updated or deleted.
func Append(tx *gorm.DB, rec *models.AuditRecord) error {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}
	if len(rec.Changes) == 0 {
		rec.Changes = models.JSONB("{}")
	}
	return tx.Create(rec).Error
}

// Service is the read/comment surface over the audit trail.
type Service struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func New(db *gorm.DB, lg *zap.SugaredLogger) *Service {
	return &Service{db: db, lg: lg}
}

func (s *Service) entryExists(ctx context.Context, caller auth.Caller, entryID string) error {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).
		Select("id").
		First(&entry, "id = ? AND tenant_id = ?", entryID, caller.TenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("time entry not found")
	}
	if err != nil {
		return apperr.Internal("load time entry", err)
	}
	return nil
}

// History returns the audit records for one entry, oldest first.
func (s *Service) History(ctx context.Context, caller auth.Caller, entryID string) ([]models.AuditRecord, error) {
	if err := s.entryExists(ctx, caller, entryID); err != nil {
		return nil, err
	}
	var recs []models.AuditRecord
	err := s.db.WithContext(ctx).
		Where("time_entry_id = ? AND tenant_id = ?", entryID, caller.TenantID).
		Order("occurred_at asc, id asc").
		Find(&recs).Error
	if err != nil {
		return nil, apperr.Internal("load audit history", err)
	}
	return recs, nil
}

func (s *Service) AddComment(ctx context.Context, caller auth.Caller, entryID, comment string, isInternal bool) (*models.TimeEntryComment, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperr.Validation("comment is required")
	}
	if err := s.entryExists(ctx, caller, entryID); err != nil {
		return nil, err
	}
	c := models.TimeEntryComment{
		ID:          uuid.NewString(),
		TimeEntryID: entryID,
		TenantID:    caller.TenantID,
		UserID:      caller.UserID,
		Comment:     comment,
		IsInternal:  isInternal,
		CreatedAt:   time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperr.Internal("create comment", err)
	}
	return &c, nil
}

// Comments lists an entry's comments, oldest first. Internal comments are
// visible to manager/admin callers only.
func (s *Service) Comments(ctx context.Context, caller auth.Caller, entryID string) ([]models.TimeEntryComment, error) {
	if err := s.entryExists(ctx, caller, entryID); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Where("time_entry_id = ? AND tenant_id = ?", entryID, caller.TenantID)
	if !caller.Managerial() {
		q = q.Where("is_internal = ?", false)
	}
	var cs []models.TimeEntryComment
	if err := q.Order("created_at asc").Find(&cs).Error; err != nil {
		return nil, apperr.Internal("load comments", err)
	}
	return cs, nil
}
