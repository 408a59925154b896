package tracker

import (
	"context"
	"fmt"
	"time"

	"signaltracker/src/model"
	"signaltracker/src/report"
	"signaltracker/src/stats"
)

// Overview is the stored state of the tracker, without re-pricing.
type Overview struct {
	Active       []model.Signal `json:"active"`
	Closed       []model.Signal `json:"closed"`
	Stats        stats.Summary  `json:"stats"`
	MarketStatus model.Session  `json:"market_status"`
	AsOf         time.Time      `json:"as_of"`
}

func (e *Engine) GetAll(ctx context.Context) (*Overview, error) {
	active, err := e.signals.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active signals: %w", err)
	}
	closed, err := e.signals.GetClosed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed signals: %w", err)
	}
	now := e.now().UTC()
	return &Overview{
		Active:       active,
		Closed:       closed,
		Stats:        stats.Compute(closed),
		MarketStatus: e.sessions.Session(model.AssetStock, now),
		AsOf:         now,
	}, nil
}

func (e *Engine) Stats(ctx context.Context) (stats.Summary, error) {
	closed, err := e.signals.GetClosed(ctx)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("load closed signals: %w", err)
	}
	return stats.Compute(closed), nil
}

func (e *Engine) RegimePerformance(ctx context.Context) ([]stats.RegimeStats, error) {
	closed, err := e.signals.GetClosed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed signals: %w", err)
	}
	return stats.ByRegime(closed), nil
}

// GetReport returns the case report of a closed signal. A closed signal whose
// report was never stored gets it generated and stored now.
func (e *Engine) GetReport(ctx context.Context, id string) (*model.CaseReport, error) {
	r, err := e.reports.GetReport(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	if r != nil {
		return r, nil
	}

	s, err := e.signals.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load signal %s: %w", id, err)
	}
	if s == nil || !s.IsClosed() {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err := e.writeReport(ctx, s); err != nil {
		return nil, fmt.Errorf("store report %s: %w", id, err)
	}
	generated := report.Generate(*s)
	return &generated, nil
}

func (e *Engine) ListReports(ctx context.Context) ([]model.CaseReport, error) {
	return e.reports.ListReports(ctx)
}

// ClearAll empties both signal sets and every report. Irreversible.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.signals.Clear(ctx); err != nil {
		return fmt.Errorf("clear signals: %w", err)
	}
	if err := e.reports.Clear(ctx); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}
	e.log.WithField("op", "clear_all").Warn("All signals and reports cleared")
	return nil
}
