package model

import "time"

// Session is the trading session a moment falls in for an asset class.
type Session string

const (
	SessionRegular    Session = "regular"
	SessionPremarket  Session = "premarket"
	SessionAfterhours Session = "afterhours"
	SessionClosed     Session = "closed"
)

// MarketContext is the macro picture saved with every entry and exit.
type MarketContext struct {
	VIX          float64   `json:"vix"`
	SPYClose     float64   `json:"spy_close"`
	SPYChangePct float64   `json:"spy_change_pct"`
	Regime       string    `json:"regime"`
	Timestamp    time.Time `json:"timestamp"`
	Error        string    `json:"error,omitempty"`
}

const RegimeUnknown = "unknown"

// PriceQuote is a validated last price for one symbol.
type PriceQuote struct {
	Symbol       string    `json:"symbol"`
	Price        float64   `json:"price"`
	PrevClose    float64   `json:"prev_close"`
	GapPct       float64   `json:"gap_pct"`
	IsStale      bool      `json:"is_stale"`
	DelayWarning string    `json:"delay_warning"`
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
}
