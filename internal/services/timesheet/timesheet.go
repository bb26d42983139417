package timesheet

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
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

// Service owns the canonical time-entry records and their approval
// lifecycle. Status only moves along the transition table in models; every
// mutation appends one audit record in the same transaction.
type Service struct {
	db    *gorm.DB
	lg    *zap.SugaredLogger
	rates *ratebook.Service
	now   func() time.Time
}

func New(db *gorm.DB, lg *zap.SugaredLogger, rates *ratebook.Service) *Service {
	return &Service{db: db, lg: lg, rates: rates, now: time.Now}
}

type CreateInput struct {
	ClientID        *string
	ProjectID       *string
	TaskID          *string
	Description     *string
	StartTime       time.Time
	EndTime         *time.Time
	DurationSeconds *int64
	Type            models.EntryType
}

func (s *Service) Create(ctx context.Context, caller auth.Caller, in CreateInput) (*models.TimeEntry, error) {
	if in.StartTime.IsZero() {
		return nil, apperr.Validation("start_time is required")
	}
	if in.Type == "" {
		in.Type = models.EntryBillable
	}
	if !in.Type.Valid() {
		return nil, apperr.Validation("type must be billable or non_billable")
	}
	var duration int64
	switch {
	case in.EndTime != nil:
		duration = int64(in.EndTime.Sub(in.StartTime).Seconds())
		if duration < 0 {
			return nil, apperr.Validation("end_time must not precede start_time")
		}
	case in.DurationSeconds != nil:
		duration = *in.DurationSeconds
		if duration < 0 {
			return nil, apperr.Validation("duration_seconds must be non-negative")
		}
	default:
		return nil, apperr.Validation("end_time or duration_seconds is required")
	}

	now := s.now()
	entry := models.TimeEntry{
		ID:              uuid.NewString(),
		TenantID:        caller.TenantID,
		UserID:          caller.UserID,
		ClientID:        in.ClientID,
		ProjectID:       in.ProjectID,
		TaskID:          in.TaskID,
		Description:     in.Description,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationSeconds: duration,
		Type:            in.Type,
		Status:          models.StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.rates.Price(ctx, &entry); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, apperr.Internal("create entry", err)
	}
	return &entry, nil
}

func (s *Service) load(ctx context.Context, tenantID, id string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.db.WithContext(ctx).First(&entry, "id = ? AND tenant_id = ?", id, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("time entry not found")
	}
	if err != nil {
		return nil, apperr.Internal("load entry", err)
	}
	return &entry, nil
}

type ListFilter struct {
	UserID    *string
	ClientID  *string
	ProjectID *string
	TaskID    *string
	Status    *models.Status
	From      *time.Time
	To        *time.Time
}

// List returns tenant-scoped entries, newest first. Staff callers only ever
// see their own entries regardless of the filter.
func (s *Service) List(ctx context.Context, caller auth.Caller, f ListFilter) ([]models.TimeEntry, error) {
	q := s.db.WithContext(ctx).Where("tenant_id = ?", caller.TenantID)
	if !caller.Managerial() {
		q = q.Where("user_id = ?", caller.UserID)
	} else if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.TaskID != nil {
		q = q.Where("task_id = ?", *f.TaskID)
	}
	if f.Status != nil {
		if !f.Status.Valid() {
			return nil, apperr.Validation("unknown status %q", *f.Status)
		}
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time <= ?", *f.To)
	}
	var entries []models.TimeEntry
	if err := q.Order("start_time desc").Find(&entries).Error; err != nil {
		return nil, apperr.Internal("list entries", err)
	}
	return entries, nil
}

type UpdateInput struct {
	ClientID    *string
	ProjectID   *string
	TaskID      *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Type        *models.EntryType
}

// Update edits a draft or rejected entry. Owners and manager/admin callers
// may edit; a changed user/task/client or time window re-resolves the rate.
func (s *Service) Update(ctx context.Context, caller auth.Caller, id string, in UpdateInput) (*models.TimeEntry, error) {
	entry, err := s.load(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != caller.UserID && !caller.Managerial() {
		return nil, apperr.Forbidden("only the owner or a manager may edit this entry")
	}
	if !entry.Status.Editable() {
		return nil, apperr.Conflict("entries in status %s cannot be edited", entry.Status)
	}
	if entry.IsBilled {
		return nil, apperr.Conflict("billed entries are immutable")
	}

	changes := map[string]any{}
	reprice := false
	if in.ClientID != nil {
		entry.ClientID = in.ClientID
		changes["client_id"] = *in.ClientID
		reprice = true
	}
	if in.ProjectID != nil {
		entry.ProjectID = in.ProjectID
		changes["project_id"] = *in.ProjectID
	}
	if in.TaskID != nil {
		entry.TaskID = in.TaskID
		changes["task_id"] = *in.TaskID
		reprice = true
	}
	if in.Description != nil {
		entry.Description = in.Description
		changes["description"] = *in.Description
	}
	if in.StartTime != nil {
		entry.StartTime = *in.StartTime
		changes["start_time"] = in.StartTime.Format(time.RFC3339)
		reprice = true
	}
	if in.EndTime != nil {
		entry.EndTime = in.EndTime
		changes["end_time"] = in.EndTime.Format(time.RFC3339)
		reprice = true
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, apperr.Validation("type must be billable or non_billable")
		}
		entry.Type = *in.Type
		changes["type"] = string(*in.Type)
		reprice = true
	}
	if len(changes) == 0 {
		return entry, nil
	}
	if entry.EndTime != nil {
		d := int64(entry.EndTime.Sub(entry.StartTime).Seconds())
		if d < 0 {
			return nil, apperr.Validation("end_time must not precede start_time")
		}
		entry.DurationSeconds = d
	}
	if reprice {
		if err := s.rates.Price(ctx, entry); err != nil {
			return nil, err
		}
	}
	entry.UpdatedAt = s.now()

	diff, _ := json.Marshal(changes)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		return journal.Append(tx, &models.AuditRecord{
			TimeEntryID: entry.ID,
			TenantID:    caller.TenantID,
			ActorID:     caller.UserID,
			Action:      models.ActionEdit,
			Changes:     models.JSONB(diff),
			OccurredAt:  entry.UpdatedAt,
		})
	})
	if err != nil {
		return nil, apperr.Internal("update entry", err)
	}
	return entry, nil
}

// Delete hard-deletes an entry in any status. The route is admin-gated; the
// check here keeps the rule even for callers that bypass the router.
func (s *Service) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if !auth.Allowed(caller.Role, auth.OpEntryDelete) {
		return apperr.Forbidden("only administrators may delete entries")
	}
	entry, err := s.load(ctx, caller.TenantID, id)
	if err != nil {
		return err
	}
	prev := entry.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TimeEntry{}, "id = ? AND tenant_id = ?", id, caller.TenantID).Error; err != nil {
			return err
		}
		return journal.Append(tx, &models.AuditRecord{
			TimeEntryID:    entry.ID,
			TenantID:       caller.TenantID,
			ActorID:        caller.UserID,
			Action:         models.ActionDelete,
			PreviousStatus: &prev,
			OccurredAt:     s.now(),
		})
	})
	if err != nil {
		return apperr.Internal("delete entry", err)
	}
	return nil
}

// transition moves one entry along the state machine and appends the audit
// record in the same transaction.
func (s *Service) transition(ctx context.Context, caller auth.Caller, id string, next models.Status, action string, reason *string) (*models.TimeEntry, error) {
	entry, err := s.load(ctx, caller.TenantID, id)
	if err != nil {
		return nil, err
	}
	switch action {
	case models.ActionSubmit:
		if entry.UserID != caller.UserID {
			return nil, apperr.Forbidden("only the owner may submit an entry")
		}
	default:
		if !auth.Allowed(caller.Role, auth.OpEntryApprove) {
			return nil, apperr.Forbidden("only managers or administrators may %s entries", action)
		}
	}
	if !entry.Status.CanTransitionTo(next) {
		return nil, apperr.Conflict("cannot %s an entry in status %s", action, entry.Status)
	}
	prev := entry.Status
	entry.Status = next
	entry.UpdatedAt = s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TimeEntry{}).
			Where("id = ? AND tenant_id = ? AND status = ?", id, caller.TenantID, prev).
			Updates(map[string]any{"status": next, "updated_at": entry.UpdatedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("entry status changed concurrently")
		}
		return journal.Append(tx, &models.AuditRecord{
			TimeEntryID:    entry.ID,
			TenantID:       caller.TenantID,
			ActorID:        caller.UserID,
			Action:         action,
			PreviousStatus: &prev,
			NewStatus:      &next,
			Reason:         reason,
			OccurredAt:     entry.UpdatedAt,
		})
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal("transition entry", err)
	}
	return entry, nil
}

func (s *Service) Submit(ctx context.Context, caller auth.Caller, id string) (*models.TimeEntry, error) {
	return s.transition(ctx, caller, id, models.StatusSubmitted, models.ActionSubmit, nil)
}

func (s *Service) Approve(ctx context.Context, caller auth.Caller, id string) (*models.TimeEntry, error) {
	return s.transition(ctx, caller, id, models.StatusApproved, models.ActionApprove, nil)
}

func (s *Service) Reject(ctx context.Context, caller auth.Caller, id, reason string) (*models.TimeEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required")
	}
	return s.transition(ctx, caller, id, models.StatusRejected, models.ActionReject, &reason)
}

// BulkResult is the per-id outcome of a bulk transition.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkTransition processes each id independently; there is no surrounding
// transaction, so partial success is expected and reported per id.
func (s *Service) BulkTransition(ctx context.Context, caller auth.Caller, ids []string, next models.Status, reason *string) []BulkResult {
	action := models.ActionBulkApprove
	if next == models.StatusRejected {
		action = models.ActionBulkReject
	}
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.transition(ctx, caller, id, next, action, reason)
		res := BulkResult{ID: id, OK: err == nil}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// Queue returns the tenant's entries awaiting disposition, oldest first.
func (s *Service) Queue(ctx context.Context, caller auth.Caller, status models.Status) ([]models.TimeEntry, error) {
	if status == "" {
		status = models.StatusSubmitted
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	var entries []models.TimeEntry
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", caller.TenantID, status).
		Order("start_time asc").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Internal("load approval queue", err)
	}
	return entries, nil
}
