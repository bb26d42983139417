package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/services/tracker"
)

func StartTimer(svc *tracker.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID    *string `json:"client_id"`
			ProjectID   *string `json:"project_id"`
			TaskID      *string `json:"task_id"`
			Description *string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := svc.Start(r.Context(), auth.CallerFrom(r.Context()), tracker.StartInput{
			ClientID:    req.ClientID,
			ProjectID:   req.ProjectID,
			TaskID:      req.TaskID,
			Description: req.Description,
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, sess)
	}
}

func StopTimer(svc *tracker.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string  `json:"session_id"`
			Notes     *string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.SessionID == "" {
			http.Error(w, "session_id required", http.StatusBadRequest)
			return
		}
		entry, err := svc.Stop(r.Context(), auth.CallerFrom(r.Context()), req.SessionID, req.Notes)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

func ActiveTimer(svc *tracker.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.Active(r.Context(), auth.CallerFrom(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if sess == nil {
			respondJSON(w, map[string]any{"active": false})
			return
		}
		respondJSON(w, sess)
	}
}
