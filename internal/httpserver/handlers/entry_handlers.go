package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/services/timesheet"
)

func CreateEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID        *string    `json:"client_id"`
			ProjectID       *string    `json:"project_id"`
			TaskID          *string    `json:"task_id"`
			Description     *string    `json:"description"`
			StartTime       time.Time  `json:"start_time"`
			EndTime         *time.Time `json:"end_time"`
			DurationSeconds *int64     `json:"duration_seconds"`
			Type            string     `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entry, err := svc.Create(r.Context(), auth.CallerFrom(r.Context()), timesheet.CreateInput{
			ClientID:        req.ClientID,
			ProjectID:       req.ProjectID,
			TaskID:          req.TaskID,
			Description:     req.Description,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			DurationSeconds: req.DurationSeconds,
			Type:            models.EntryType(req.Type),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

func ListEntries(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := timesheet.ListFilter{
			UserID:    queryString(r, "user_id"),
			ClientID:  queryString(r, "client_id"),
			ProjectID: queryString(r, "project_id"),
			TaskID:    queryString(r, "task_id"),
		}
		if s := queryString(r, "status"); s != nil {
			st := models.Status(*s)
			f.Status = &st
		}
		var err error
		if f.From, err = queryTime(r, "from"); err != nil {
			http.Error(w, "from must be RFC3339", http.StatusBadRequest)
			return
		}
		if f.To, err = queryTime(r, "to"); err != nil {
			http.Error(w, "to must be RFC3339", http.StatusBadRequest)
			return
		}
		entries, err := svc.List(r.Context(), auth.CallerFrom(r.Context()), f)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, entries)
	}
}

func UpdateEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID    *string    `json:"client_id"`
			ProjectID   *string    `json:"project_id"`
			TaskID      *string    `json:"task_id"`
			Description *string    `json:"description"`
			StartTime   *time.Time `json:"start_time"`
			EndTime     *time.Time `json:"end_time"`
			Type        *string    `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in := timesheet.UpdateInput{
			ClientID:    req.ClientID,
			ProjectID:   req.ProjectID,
			TaskID:      req.TaskID,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		}
		if req.Type != nil {
			t := models.EntryType(*req.Type)
			in.Type = &t
		}
		entry, err := svc.Update(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"), in)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

func DeleteEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
