package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecore/internal/auth"
	"timecore/internal/httpserver/handlers"
	"timecore/internal/services/billing"
	"timecore/internal/services/journal"
	"timecore/internal/services/ratebook"
	"timecore/internal/services/reporting"
	"timecore/internal/services/timesheet"
	"timecore/internal/services/tracker"
)

func NewRouter(db *gorm.DB, lg *zap.SugaredLogger) http.Handler {
	rates := ratebook.New(db, lg)
	timers := tracker.New(db, lg, rates)
	sheet := timesheet.New(db, lg, rates)
	bills := billing.New(db, lg)
	reports := reporting.New(db)
	trail := journal.New(db, lg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth())

		protected.Post("/v1/timer/start", handlers.StartTimer(timers, lg))
		protected.Post("/v1/timer/stop", handlers.StopTimer(timers, lg))
		protected.Get("/v1/timer/active", handlers.ActiveTimer(timers, lg))

		protected.Post("/v1/entries", handlers.CreateEntry(sheet, lg))
		protected.Get("/v1/entries", handlers.ListEntries(sheet, lg))
		protected.Put("/v1/entries/{id}", handlers.UpdateEntry(sheet, lg))
		protected.With(auth.RequireOp(auth.OpEntryDelete)).
			Delete("/v1/entries/{id}", handlers.DeleteEntry(sheet, lg))

		protected.Post("/v1/entries/{id}/submit", handlers.SubmitEntry(sheet, lg))
		protected.With(auth.RequireOp(auth.OpEntryApprove)).
			Post("/v1/entries/{id}/approve", handlers.ApproveEntry(sheet, lg))
		protected.With(auth.RequireOp(auth.OpEntryReject)).
			Post("/v1/entries/{id}/reject", handlers.RejectEntry(sheet, lg))
		protected.With(auth.RequireOp(auth.OpEntryApprove)).
			Post("/v1/entries/bulk-approve", handlers.BulkApprove(sheet, lg))
		protected.With(auth.RequireOp(auth.OpEntryReject)).
			Post("/v1/entries/bulk-reject", handlers.BulkReject(sheet, lg))
		protected.With(auth.RequireOp(auth.OpQueueView)).
			Get("/v1/approval-queue", handlers.ApprovalQueue(sheet, lg))

		protected.Post("/v1/entries/{id}/comments", handlers.AddComment(trail, lg))
		protected.Get("/v1/entries/{id}/comments", handlers.ListComments(trail, lg))
		protected.Get("/v1/entries/{id}/audit", handlers.AuditHistory(trail, lg))

		protected.Get("/v1/rates/{kind}", handlers.ListRates(db, lg))
		protected.Group(func(mgr chi.Router) {
			mgr.Use(auth.RequireOp(auth.OpRateWrite))
			mgr.Post("/v1/rates/{kind}", handlers.CreateRate(db, lg))
			mgr.Put("/v1/rates/{kind}/{id}", handlers.UpdateRate(db, lg))
			mgr.Delete("/v1/rates/{kind}/{id}", handlers.DeleteRate(db, lg))
		})

		protected.Get("/v1/unbilled", handlers.UnbilledTime(bills, lg))
		protected.Post("/v1/mark-billed", handlers.MarkBilled(bills, lg))

		protected.Get("/v1/reports/by-client", handlers.ReportByClient(reports, lg))
		protected.Get("/v1/reports/by-staff", handlers.ReportByStaff(reports, lg))
		protected.Get("/v1/reports/by-project", handlers.ReportByProject(reports, lg))
		protected.Get("/v1/reports/billable-comparison", handlers.ReportBillableComparison(reports, lg))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
