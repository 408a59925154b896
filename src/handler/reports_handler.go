package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"signaltracker/src/model"
	"signaltracker/src/stats"
)

type statsReader interface {
	Stats(ctx context.Context) (stats.Summary, error)
	RegimePerformance(ctx context.Context) ([]stats.RegimeStats, error)
}

type reportReader interface {
	GetReport(ctx context.Context, id string) (*model.CaseReport, error)
	ListReports(ctx context.Context) ([]model.CaseReport, error)
}

func StatsHandler(svc statsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, "stats", err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func RegimeStatsHandler(svc statsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regimes, err := svc.RegimePerformance(r.Context())
		if err != nil {
			writeError(w, "regime_stats", err)
			return
		}
		writeJSON(w, http.StatusOK, regimes)
	}
}

func ListReportsHandler(svc reportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := svc.ListReports(r.Context())
		if err != nil {
			writeError(w, "list_reports", err)
			return
		}
		if reports == nil {
			reports = []model.CaseReport{}
		}
		writeJSON(w, http.StatusOK, reports)
	}
}

// GetReportHandler returns the report document of one closed signal.
func GetReportHandler(svc reportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.GetReport(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, "get_report", err)
			return
		}
		writeJSON(w, http.StatusOK, report.Document)
	}
}
