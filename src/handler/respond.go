package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"signaltracker/src/tracker"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps tracker failures to status codes. Validation failures are
// 4xx, anything else is a store failure and hidden behind a 500.
func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrSignalNotFound), errors.Is(err, tracker.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidSymbol), errors.Is(err, tracker.ErrInvalidAssetClass):
		status = http.StatusBadRequest
	case errors.Is(err, tracker.ErrInvalidPrice):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.WithError(err).WithField("op", op).Error("request failed")
		http.Error(w, "Internal Server Error", status)
		return
	}
	logger.WithError(err).WithField("op", op).Warn("request rejected")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
