package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/services/timesheet"
)

func SubmitEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := svc.Submit(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

func ApproveEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := svc.Approve(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

func RejectEntry(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entry, err := svc.Reject(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"), req.Reason)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, entry)
	}
}

// bulk reduces the per-id results to the aggregate count the API promises.
func bulk(svc *timesheet.Service, lg *zap.SugaredLogger, next models.Status, needReason bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			EntryIDs []string `json:"entry_ids"`
			Reason   string   `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.EntryIDs) == 0 {
			http.Error(w, "entry_ids required", http.StatusBadRequest)
			return
		}
		var reason *string
		if needReason {
			if req.Reason == "" {
				http.Error(w, "reason required", http.StatusBadRequest)
				return
			}
			reason = &req.Reason
		}
		results := svc.BulkTransition(r.Context(), auth.CallerFrom(r.Context()), req.EntryIDs, next, reason)
		count := 0
		for _, res := range results {
			if res.OK {
				count++
			}
		}
		respondJSON(w, map[string]any{"success": count == len(results), "count": count, "results": results})
	}
}

func BulkApprove(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return bulk(svc, lg, models.StatusApproved, false)
}

func BulkReject(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return bulk(svc, lg, models.StatusRejected, true)
}

func ApprovalQueue(svc *timesheet.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.Status(r.URL.Query().Get("status"))
		entries, err := svc.Queue(r.Context(), auth.CallerFrom(r.Context()), status)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, entries)
	}
}
