package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/apperr"
	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/services/journal"
	"timecore/internal/services/ratebook"
)

// Service tracks at most one running timer per staff member and converts a
// stopped session into a draft time entry.
type Service struct {
	db    *gorm.DB
	lg    *zap.SugaredLogger
	rates *ratebook.Service
	now   func() time.Time
}

func New(db *gorm.DB, lg *zap.SugaredLogger, rates *ratebook.Service) *Service {
	return &Service{db: db, lg: lg, rates: rates, now: time.Now}
}

type StartInput struct {
	ClientID    *string
	ProjectID   *string
	TaskID      *string
	Description *string
}

// Start opens a session. The friendly conflict comes from the existence
// check; the partial unique index on (user_id) WHERE is_active closes the
// race two near-simultaneous starts would otherwise win together.
func (s *Service) Start(ctx context.Context, caller auth.Caller, in StartInput) (*models.TimerSession, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.TimerSession{}).
		Where("user_id = ? AND tenant_id = ? AND is_active = ?", caller.UserID, caller.TenantID, true).
		Count(&count).Error
	if err != nil {
		return nil, apperr.Internal("check active session", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("a timer is already running; stop it first")
	}
	sess := models.TimerSession{
		ID:          uuid.NewString(),
		TenantID:    caller.TenantID,
		UserID:      caller.UserID,
		ClientID:    in.ClientID,
		ProjectID:   in.ProjectID,
		TaskID:      in.TaskID,
		Description: in.Description,
		StartedAt:   s.now(),
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("a timer is already running; stop it first")
		}
		return nil, apperr.Internal("create session", err)
	}
	return &sess, nil
}

// Active returns the caller's running session, or nil when there is none.
func (s *Service) Active(ctx context.Context, caller auth.Caller) (*models.TimerSession, error) {
	var sess models.TimerSession
	err := s.db.WithContext(ctx).
		First(&sess, "user_id = ? AND tenant_id = ? AND is_active = ?", caller.UserID, caller.TenantID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load active session", err)
	}
	return &sess, nil
}

// Stop deactivates the session and creates a priced draft entry from it.
// Sessions belonging to another user or tenant read as not found.
func (s *Service) Stop(ctx context.Context, caller auth.Caller, sessionID string, notes *string) (*models.TimeEntry, error) {
	var sess models.TimerSession
	err := s.db.WithContext(ctx).
		First(&sess, "id = ? AND user_id = ? AND tenant_id = ? AND is_active = ?",
			sessionID, caller.UserID, caller.TenantID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("active session not found")
	}
	if err != nil {
		return nil, apperr.Internal("load session", err)
	}

	stoppedAt := s.now()
	duration := int64(stoppedAt.Sub(sess.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	description := sess.Description
	if notes != nil {
		description = notes
	}
	entry := models.TimeEntry{
		ID:              uuid.NewString(),
		TenantID:        caller.TenantID,
		UserID:          caller.UserID,
		ClientID:        sess.ClientID,
		ProjectID:       sess.ProjectID,
		TaskID:          sess.TaskID,
		Description:     description,
		StartTime:       sess.StartedAt,
		EndTime:         &stoppedAt,
		DurationSeconds: duration,
		Type:            models.EntryBillable,
		Status:          models.StatusDraft,
		CreatedAt:       stoppedAt,
		UpdatedAt:       stoppedAt,
	}
	if err := s.rates.Price(ctx, &entry); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TimerSession{}).
			Where("id = ? AND is_active = ?", sess.ID, true).
			Updates(map[string]any{"is_active": false, "updated_at": stoppedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("active session not found")
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		status := models.StatusDraft
		return journal.Append(tx, &models.AuditRecord{
			TimeEntryID: entry.ID,
			TenantID:    caller.TenantID,
			ActorID:     caller.UserID,
			Action:      models.ActionCreate,
			NewStatus:   &status,
			OccurredAt:  stoppedAt,
		})
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal("stop session", err)
	}
	return &entry, nil
}
