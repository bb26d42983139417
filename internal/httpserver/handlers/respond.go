package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"timecore/internal/apperr"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondList(w http.ResponseWriter, v interface{}) {
	respondJSON(w, map[string]any{"data": v})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation: http.StatusBadRequest,
	apperr.KindForbidden:  http.StatusForbidden,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindInternal:   http.StatusInternalServerError,
}

// respondError maps the error taxonomy onto status codes. Internal failures
// are logged in full and surfaced without detail.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		lg.Errorw("internal error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kindStatus[kind])
	_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error(), "kind": kind})
}
