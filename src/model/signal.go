package model

import "time"

type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetCrypto AssetClass = "crypto"
)

// Valid reports whether the asset class is one the tracker knows how to gate.
func (a AssetClass) Valid() bool {
	return a == AssetStock || a == AssetCrypto
}

type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusTP2Hit      Status = "TP2_HIT"
	StatusTP3Hit      Status = "TP3_HIT"
	StatusStoppedOut  Status = "STOPPED_OUT"
	StatusTimeout     Status = "TIMEOUT"
	StatusManualClose Status = "MANUAL_CLOSE"
)

// Terminal reports whether the status closes the signal.
func (s Status) Terminal() bool {
	return s != StatusOpen && s != ""
}

type TargetMethod string

const (
	TargetMethodATR         TargetMethod = "atr"
	TargetMethodPctFallback TargetMethod = "pct_fallback"
)

// Set membership of a signal record. A record moves active -> closed once.
const (
	StateActive = "active"
	StateClosed = "closed"
)

// Signal is one paper-traded trade idea, from entry to exit.
type Signal struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Ticker     string     `gorm:"size:32;not null;index" json:"ticker"`
	AssetClass AssetClass `gorm:"size:16;not null" json:"asset_type"`
	State      string     `gorm:"size:10;not null;index" json:"state"`
	Turbo      bool       `json:"turbo"`

	// Entry facet, immutable after creation.
	EntryPrice         float64            `gorm:"not null" json:"entry_price"`
	EntryTime          time.Time          `gorm:"not null" json:"entry_time"`
	Conviction         float64            `json:"conviction"`
	Heat               string             `gorm:"size:32" json:"heat"`
	RiskReward         float64            `json:"rr"`
	Regime             string             `gorm:"size:64" json:"regime"`
	TAS                string             `gorm:"size:16" json:"tas"`
	Trend              string             `gorm:"size:32" json:"trend"`
	PillarScores       map[string]float64 `gorm:"serializer:json" json:"pillar_scores"`
	TANote             string             `gorm:"type:text" json:"ta_note"`
	EntryMarketContext MarketContext      `gorm:"serializer:json" json:"entry_market_context"`
	EntrySnapshot      map[string]any     `gorm:"serializer:json" json:"entry_snapshot"`
	EntrySession       Session            `gorm:"size:16" json:"entry_session"`
	TargetMethod       TargetMethod       `gorm:"size:16" json:"target_method"`
	ATRAtEntry         *float64           `json:"atr_at_entry"`
	PriceStaleAtEntry  bool               `json:"price_stale_at_entry"`
	PriceDelayWarning  string             `gorm:"size:64" json:"price_delay_warning"`

	// Targets, derived from the entry facet.
	SL  float64 `gorm:"column:sl" json:"sl"`
	TP1 float64 `gorm:"column:tp1" json:"tp1"`
	TP2 float64 `gorm:"column:tp2" json:"tp2"`
	TP3 float64 `gorm:"column:tp3" json:"tp3"`

	// Tracking facet, refreshed every evaluation while active.
	Status              Status     `gorm:"size:16;not null;index" json:"status"`
	CurrentPrice        float64    `json:"current_price"`
	LastObservedPrice   float64    `json:"last_observed_price"`
	LastObservedSession Session    `gorm:"size:16" json:"last_observed_session"`
	PriceStale          bool       `json:"price_stale"`
	PnLPct              float64    `gorm:"column:pnl_pct" json:"pnl_pct"`
	HighestPrice        float64    `json:"highest_price"`
	LowestPrice         float64    `json:"lowest_price"`
	MAEPct              float64    `gorm:"column:mae_pct" json:"mae_pct"`
	MFEPct              float64    `gorm:"column:mfe_pct" json:"mfe_pct"`
	TP1Hit              bool       `gorm:"column:tp1_hit" json:"tp1_hit"`
	TP2Hit              bool       `gorm:"column:tp2_hit" json:"tp2_hit"`
	TP3Hit              bool       `gorm:"column:tp3_hit" json:"tp3_hit"`
	TP1HitTime          *time.Time `gorm:"column:tp1_hit_time" json:"tp1_hit_time,omitempty"`
	TP2HitTime          *time.Time `gorm:"column:tp2_hit_time" json:"tp2_hit_time,omitempty"`
	TP3HitTime          *time.Time `gorm:"column:tp3_hit_time" json:"tp3_hit_time,omitempty"`
	BarsHeld            int        `json:"bars_held"`
	LastEvaluatedAt     *time.Time `json:"last_evaluated_at,omitempty"`

	// Close facet, written once when the signal leaves the active set.
	ClosedAt           *time.Time     `json:"closed_at"`
	CloseReason        string         `gorm:"type:text" json:"close_reason"`
	ClosePrice         *float64       `json:"close_price"`
	CloseSnapshot      *CloseSnapshot `gorm:"serializer:json" json:"close_snapshot"`
	CloseMarketContext *MarketContext `gorm:"serializer:json" json:"close_market_context"`
	CloseSession       Session        `gorm:"size:16" json:"close_session"`
	GapInfo            *GapInfo       `gorm:"serializer:json" json:"gap_info"`
	SlippagePct        float64        `json:"slippage_pct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable across renames of the struct.
func (Signal) TableName() string {
	return "signals"
}

// IsClosed reports whether the close facet has been written.
func (s *Signal) IsClosed() bool {
	return s.State == StateClosed
}

// CloseSnapshot freezes the tracking facet at the moment of closure.
type CloseSnapshot struct {
	Price        float64 `json:"price"`
	PnLPct       float64 `json:"pnl_pct"`
	MAEPct       float64 `json:"mae_pct"`
	MFEPct       float64 `json:"mfe_pct"`
	BarsHeld     int     `json:"bars_held"`
	HighestPrice float64 `json:"highest_price"`
	LowestPrice  float64 `json:"lowest_price"`
	SlippagePct  float64 `json:"slippage_pct"`
}

const (
	GapThroughSL = "gap_through_sl"
	GapThroughTP = "gap_through_tp"
)

// GapInfo describes a fill that jumped past its level.
type GapInfo struct {
	GapType       string  `json:"gap_type"`
	Level         string  `json:"level"`
	IntendedPrice float64 `json:"intended_price"`
	FillPrice     float64 `json:"fill_price"`
	PrevPrice     float64 `json:"prev_price"`
	SlippagePct   float64 `json:"slippage_pct"`
	SessionOpened bool    `json:"session_opened"`
	Note          string  `json:"note"`
}
