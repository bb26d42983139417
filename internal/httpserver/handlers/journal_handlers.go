package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/services/journal"
)

func AddComment(svc *journal.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Comment    string `json:"comment"`
			IsInternal bool   `json:"is_internal"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := svc.AddComment(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"), req.Comment, req.IsInternal)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, c)
	}
}

func ListComments(svc *journal.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := svc.Comments(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, cs)
	}
}

func AuditHistory(svc *journal.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.History(r.Context(), auth.CallerFrom(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, recs)
	}
}
