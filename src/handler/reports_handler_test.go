package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"signaltracker/src/model"
	"signaltracker/src/stats"
	"signaltracker/src/tracker"

	"github.com/stretchr/testify/assert"
)

func TestStatsHandler(t *testing.T) {
	m := &mockTracker{summary: stats.Summary{TotalClosed: 2, WinRate: 50, ProfitFactor: 2}}

	rr := httptest.NewRecorder()
	StatsHandler(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got stats.Summary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, 2.0, got.ProfitFactor)
	assert.Equal(t, 50.0, got.WinRate)
}

func TestRegimeStatsHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	RegimeStatsHandler(&mockTracker{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/regimes", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.Contains(t, rr.Body.String(), "Trending Bull")
}

func TestGetReportHandler(t *testing.T) {
	m := &mockTracker{report: &model.CaseReport{
		SignalID: "abc",
		Document: model.ReportDocument{
			ReportVersion: model.ReportVersion,
			SignalID:      "abc",
			Analysis:      map[string]string{"sl_review": "ok"},
		},
	}}

	rr := httptest.NewRecorder()
	GetReportHandler(m).ServeHTTP(rr, withID(httptest.NewRequest(http.MethodGet, "/reports/abc", nil), "abc"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var got model.ReportDocument
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, "2.0", got.ReportVersion)
	assert.Equal(t, "ok", got.Analysis["sl_review"])
}

func TestGetReportHandler_NotFound(t *testing.T) {
	m := &mockTracker{err: fmt.Errorf("%w: abc", tracker.ErrReportNotFound)}
	rr := httptest.NewRecorder()
	GetReportHandler(m).ServeHTTP(rr, withID(httptest.NewRequest(http.MethodGet, "/reports/abc", nil), "abc"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestListReportsHandler_EmptyIsArray(t *testing.T) {
	rr := httptest.NewRecorder()
	ListReportsHandler(&mockTracker{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	assert.JSONEq(t, `[]`, rr.Body.String())
}
