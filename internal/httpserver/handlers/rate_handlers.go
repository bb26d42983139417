package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/auth"
	"timecore/internal/models"
)

// Rate tables are plain tenant-scoped CRUD; the interesting logic (precedence
// and pricing) lives in services/ratebook. The {kind} URL segment selects the
// table: staff, task-types, or clients.

const (
	rateKindStaff    = "staff"
	rateKindTaskType = "task-types"
	rateKindClient   = "clients"
)

type rateReq struct {
	SubjectID     string     `json:"subject_id"`
	HourlyRate    *float64   `json:"hourly_rate"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

func CreateRate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		var req rateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.SubjectID == "" {
			http.Error(w, "subject_id required", http.StatusBadRequest)
			return
		}
		if req.HourlyRate == nil || *req.HourlyRate < 0 {
			http.Error(w, "hourly_rate must be non-negative", http.StatusBadRequest)
			return
		}
		caller := auth.CallerFrom(r.Context())
		id := uuid.NewString()
		now := time.Now()
		var rec any
		switch kind {
		case rateKindStaff:
			rec = &models.StaffRate{ID: id, TenantID: caller.TenantID, UserID: req.SubjectID,
				HourlyRate: *req.HourlyRate, EffectiveFrom: req.EffectiveFrom, CreatedAt: now, UpdatedAt: now}
		case rateKindTaskType:
			rec = &models.TaskTypeRate{ID: id, TenantID: caller.TenantID, TaskTypeID: req.SubjectID,
				HourlyRate: *req.HourlyRate, EffectiveFrom: req.EffectiveFrom, CreatedAt: now, UpdatedAt: now}
		case rateKindClient:
			rec = &models.ClientRate{ID: id, TenantID: caller.TenantID, ClientID: req.SubjectID,
				HourlyRate: *req.HourlyRate, EffectiveFrom: req.EffectiveFrom, CreatedAt: now, UpdatedAt: now}
		default:
			http.Error(w, "unknown rate kind", http.StatusNotFound)
			return
		}
		if err := db.Create(rec).Error; err != nil {
			lg.Errorw("create rate", "kind", kind, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, rec)
	}
}

func ListRates(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := auth.CallerFrom(r.Context())
		subject := r.URL.Query().Get("subject_id")
		scoped := func(col string, dest any) error {
			q := db.Where("tenant_id = ?", caller.TenantID)
			if subject != "" {
				q = q.Where(col+" = ?", subject)
			}
			return q.Order("created_at desc").Find(dest).Error
		}
		var err error
		var out any
		switch chi.URLParam(r, "kind") {
		case rateKindStaff:
			var rs []models.StaffRate
			err = scoped("user_id", &rs)
			out = rs
		case rateKindTaskType:
			var rs []models.TaskTypeRate
			err = scoped("task_type_id", &rs)
			out = rs
		case rateKindClient:
			var rs []models.ClientRate
			err = scoped("client_id", &rs)
			out = rs
		default:
			http.Error(w, "unknown rate kind", http.StatusNotFound)
			return
		}
		if err != nil {
			lg.Errorw("list rates", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondList(w, out)
	}
}

func UpdateRate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HourlyRate    *float64   `json:"hourly_rate"`
			EffectiveFrom *time.Time `json:"effective_from"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.HourlyRate != nil && *req.HourlyRate < 0 {
			http.Error(w, "hourly_rate must be non-negative", http.StatusBadRequest)
			return
		}
		rec, err := loadRate(db, r)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		updates := map[string]any{"updated_at": time.Now()}
		if req.HourlyRate != nil {
			updates["hourly_rate"] = *req.HourlyRate
		}
		if req.EffectiveFrom != nil {
			updates["effective_from"] = *req.EffectiveFrom
		}
		if err := db.Model(rec).Updates(updates).Error; err != nil {
			lg.Errorw("update rate", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"updated": true})
	}
}

func DeleteRate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := loadRate(db, r)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := db.Delete(rec).Error; err != nil {
			lg.Errorw("delete rate", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}

// loadRate fetches a rate row by {kind}/{id} within the caller's tenant.
func loadRate(db *gorm.DB, r *http.Request) (any, error) {
	caller := auth.CallerFrom(r.Context())
	id := chi.URLParam(r, "id")
	var rec any
	switch chi.URLParam(r, "kind") {
	case rateKindStaff:
		rec = &models.StaffRate{}
	case rateKindTaskType:
		rec = &models.TaskTypeRate{}
	case rateKindClient:
		rec = &models.ClientRate{}
	default:
		return nil, errors.New("unknown rate kind")
	}
	if err := db.First(rec, "id = ? AND tenant_id = ?", id, caller.TenantID).Error; err != nil {
		return nil, err
	}
	return rec, nil
}
