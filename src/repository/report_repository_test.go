package repository

import (
	"context"
	"testing"
	"time"

	"signaltracker/src/model"

	"github.com/stretchr/testify/require"
)

func newReport(id, ticker string, at time.Time, note string) *model.CaseReport {
	return &model.CaseReport{
		SignalID:    id,
		Ticker:      ticker,
		Status:      model.StatusTP2Hit,
		GeneratedAt: at,
		Document: model.ReportDocument{
			ReportVersion: model.ReportVersion,
			GeneratedAt:   at,
			SignalID:      id,
			Ticker:        ticker,
			Analysis:      map[string]string{"sl_review": note},
		},
	}
}

func TestReportRepository_AppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := (&ReportRepository{}).WithDB(newTestDB(t))
	at := time.Date(2025, 3, 5, 16, 0, 0, 0, time.UTC)

	require.NoError(t, repo.PutReport(ctx, newReport("sig-1", "AAPL", at, "first")))
	require.NoError(t, repo.PutReport(ctx, newReport("sig-1", "AAPL", at, "second")))

	got, err := repo.GetReport(ctx, "sig-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "first", got.Document.Analysis["sl_review"])
	require.Equal(t, model.ReportVersion, got.Document.ReportVersion)

	missing, err := repo.GetReport(ctx, "sig-2")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestReportRepository_ListAndClear(t *testing.T) {
	ctx := context.Background()
	repo := (&ReportRepository{}).WithDB(newTestDB(t))
	at := time.Date(2025, 3, 5, 16, 0, 0, 0, time.UTC)

	require.NoError(t, repo.PutReport(ctx, newReport("old", "AAPL", at, "x")))
	require.NoError(t, repo.PutReport(ctx, newReport("new", "MSFT", at.Add(time.Hour), "y")))

	list, err := repo.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "new", list[0].SignalID)

	require.NoError(t, repo.Clear(ctx))
	list, err = repo.ListReports(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
