package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/services/reporting"
)

func reportWindow(r *http.Request) (reporting.Window, error) {
	var w reporting.Window
	var err error
	if w.From, err = queryTime(r, "from"); err != nil {
		return w, err
	}
	w.To, err = queryTime(r, "to")
	return w, err
}

func groupReport(lg *zap.SugaredLogger, fn func(context.Context, string, reporting.Window) ([]reporting.GroupRow, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := reportWindow(r)
		if err != nil {
			http.Error(w, "from/to must be RFC3339", http.StatusBadRequest)
			return
		}
		rows, err := fn(r.Context(), auth.CallerFrom(r.Context()).TenantID, win)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondList(w, rows)
	}
}

func ReportByClient(svc *reporting.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return groupReport(lg, svc.ByClient)
}

func ReportByStaff(svc *reporting.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return groupReport(lg, svc.ByStaff)
}

func ReportByProject(svc *reporting.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return groupReport(lg, svc.ByProject)
}

func ReportBillableComparison(svc *reporting.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		win, err := reportWindow(r)
		if err != nil {
			http.Error(w, "from/to must be RFC3339", http.StatusBadRequest)
			return
		}
		out, err := svc.BillableComparison(r.Context(), auth.CallerFrom(r.Context()).TenantID, win)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, out)
	}
}
