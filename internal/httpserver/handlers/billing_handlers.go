package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/services/billing"
)

func UnbilledTime(svc *billing.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := svc.Unbilled(r.Context(), auth.CallerFrom(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, groups)
	}
}

func MarkBilled(svc *billing.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EntryIDs []string `json:"entry_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		count, err := svc.MarkBilled(r.Context(), auth.CallerFrom(r.Context()), req.EntryIDs)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true, "count": count})
	}
}
