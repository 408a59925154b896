package tracker

import (
	"context"
	"errors"
	"time"

	"signaltracker/src/model"
)

var (
	// ErrInvalidPrice is returned when a symbol has no usable price.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrSignalNotFound is returned when an id is unknown or no longer active.
	ErrSignalNotFound = errors.New("signal not found in active set")
	// ErrReportNotFound is returned when no closed signal exists for a report id.
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidAssetClass = errors.New("invalid asset class")
	ErrInvalidSymbol     = errors.New("invalid symbol")
)

// MarketData is the market feed the engine prices signals with.
type MarketData interface {
	GetPrice(ctx context.Context, symbol string, asset model.AssetClass) (model.PriceQuote, error)
	GetATR14(ctx context.Context, symbol string, asset model.AssetClass) (float64, error)
	GetIndicatorSnapshot(ctx context.Context, symbol string, asset model.AssetClass) (map[string]any, error)
	GetMarketContext(ctx context.Context) (model.MarketContext, error)
}

// SessionSource tells which trading session a moment falls in.
type SessionSource interface {
	Session(asset model.AssetClass, now time.Time) model.Session
}

// SignalStore holds the active and closed sets. MoveToClosed must fail with
// model.ErrNotActive when the record already left the active set.
type SignalStore interface {
	GetActive(ctx context.Context) ([]model.Signal, error)
	GetClosed(ctx context.Context) ([]model.Signal, error)
	Get(ctx context.Context, id string) (*model.Signal, error)
	Put(ctx context.Context, s *model.Signal) error
	MoveToClosed(ctx context.Context, s *model.Signal) error
	Clear(ctx context.Context) error
}

type ReportStore interface {
	PutReport(ctx context.Context, r *model.CaseReport) error
	GetReport(ctx context.Context, signalID string) (*model.CaseReport, error)
	ListReports(ctx context.Context) ([]model.CaseReport, error)
	Clear(ctx context.Context) error
}

// CloseListener is told about every signal that reaches a terminal status.
type CloseListener interface {
	SignalClosed(s model.Signal)
}

// ScanData is the pass-through metadata a scanner attaches to a signal.
type ScanData struct {
	Conviction   float64            `json:"conviction_pct"`
	Heat         string             `json:"heat"`
	Regime       string             `json:"regime"`
	TAS          string             `json:"tas"`
	Trend        string             `json:"trend"`
	TANote       string             `json:"ta_note"`
	PillarScores map[string]float64 `json:"pillar_scores"`
}

// ScanRow is one ranked ticker of a scan batch.
type ScanRow struct {
	Ticker   string `json:"ticker"`
	HardFail bool   `json:"hard_fail"`
	ScanData
}

// ScanResult is a scan batch as produced by the ranking engine.
type ScanResult struct {
	MarketRegime string    `json:"market_regime"`
	Results      []ScanRow `json:"results"`
}

// Warning is a non-fatal problem met while processing one signal.
type Warning struct {
	SignalID string `json:"signal_id,omitempty"`
	Ticker   string `json:"ticker"`
	Message  string `json:"message"`
}
