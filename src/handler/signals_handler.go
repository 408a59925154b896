package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/auth"
	"signaltracker/src/model"
	"signaltracker/src/tracker"
)

type signalLister interface {
	GetAll(ctx context.Context) (*tracker.Overview, error)
}

type signalCreator interface {
	Create(ctx context.Context, symbol string, asset model.AssetClass, scan *tracker.ScanData) (*model.Signal, error)
}

type scanRecorder interface {
	RecordFromScan(ctx context.Context, scan tracker.ScanResult, asset model.AssetClass) ([]model.Signal, []tracker.Warning, error)
}

type evaluator interface {
	EvaluateAll(ctx context.Context) (*tracker.PassResult, error)
}

type signalCloser interface {
	CloseSignal(ctx context.Context, id, reason string) (*model.Signal, error)
}

type clearer interface {
	ClearAll(ctx context.Context) error
}

// CreateSignalPayload opens a signal. Scan is omitted for a turbo launch.
type CreateSignalPayload struct {
	Symbol    string            `json:"symbol"`
	AssetType model.AssetClass  `json:"asset_type"`
	Scan      *tracker.ScanData `json:"scan,omitempty"`
}

type RecordScanPayload struct {
	AssetType model.AssetClass   `json:"asset_type"`
	Scan      tracker.ScanResult `json:"scan"`
}

type CloseSignalPayload struct {
	Reason string `json:"reason"`
}

// ListSignalsHandler returns the stored active and closed sets with stats.
func ListSignalsHandler(svc signalLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.GetAll(r.Context())
		if err != nil {
			writeError(w, "list_signals", err)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}

func CreateSignalHandler(svc signalCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateSignalPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create signal payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if payload.AssetType == "" {
			payload.AssetType = model.AssetStock
		}

		s, err := svc.Create(r.Context(), payload.Symbol, payload.AssetType, payload.Scan)
		if err != nil {
			writeError(w, "create_signal", err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

// RecordScanHandler opens signals for the qualifying rows of a scan batch.
func RecordScanHandler(svc scanRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload RecordScanPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid scan payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		if payload.AssetType == "" {
			payload.AssetType = model.AssetStock
		}

		created, warnings, err := svc.RecordFromScan(r.Context(), payload.Scan, payload.AssetType)
		if err != nil {
			writeError(w, "record_scan", err)
			return
		}
		if created == nil {
			created = []model.Signal{}
		}
		if warnings == nil {
			warnings = []tracker.Warning{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"created":  created,
			"warnings": warnings,
		})
	}
}

// EvaluateHandler runs one evaluation pass on demand.
func EvaluateHandler(svc evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.EvaluateAll(r.Context())
		if err != nil {
			writeError(w, "evaluate", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func CloseSignalHandler(svc signalCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		var payload CloseSignalPayload
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				http.Error(w, "Invalid payload", http.StatusBadRequest)
				return
			}
		}

		s, err := svc.CloseSignal(r.Context(), id, payload.Reason)
		if err != nil {
			writeError(w, "close_signal", err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// ClearSignalsHandler wipes every signal and report.
func ClearSignalsHandler(svc clearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err := svc.ClearAll(r.Context()); err != nil {
			writeError(w, "clear_all", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
