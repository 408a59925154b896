package model

import "time"

const ReportVersion = "2.0"

// CaseReport is the persisted post-mortem of a closed signal. Written once,
// keyed by signal id.
type CaseReport struct {
	SignalID    string         `gorm:"primaryKey;size:36" json:"signal_id"`
	Ticker      string         `gorm:"size:32;index" json:"ticker"`
	Status      Status         `gorm:"size:16" json:"status"`
	Document    ReportDocument `gorm:"serializer:json" json:"document"`
	GeneratedAt time.Time      `json:"generated_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (CaseReport) TableName() string {
	return "signal_reports"
}

// ReportDocument is the stored JSON shape of a case report. Older reports
// must stay readable, so fields are only ever added.
type ReportDocument struct {
	ReportVersion string            `json:"report_version"`
	GeneratedAt   time.Time         `json:"generated_at"`
	SignalID      string            `json:"signal_id"`
	Ticker        string            `json:"ticker"`
	AssetType     AssetClass        `json:"asset_type"`
	Entry         ReportEntry       `json:"entry"`
	Targets       ReportTargets     `json:"targets"`
	Exit          ReportExit        `json:"exit"`
	Performance   ReportPerformance `json:"performance"`
	Analysis      map[string]string `json:"analysis"`
}

type ReportEntry struct {
	Price             float64            `json:"price"`
	Time              time.Time          `json:"time"`
	Session           Session            `json:"session"`
	Conviction        float64            `json:"conviction"`
	Heat              string             `json:"heat"`
	PillarScores      map[string]float64 `json:"pillar_scores"`
	TAS               string             `json:"tas"`
	Trend             string             `json:"trend"`
	TANote            string             `json:"ta_note"`
	Regime            string             `json:"regime"`
	MarketContext     MarketContext      `json:"market_context"`
	IndicatorSnapshot map[string]any     `json:"indicator_snapshot"`
	TargetMethod      TargetMethod       `json:"target_method"`
	ATRAtEntry        *float64           `json:"atr_at_entry"`
	PriceStaleAtEntry bool               `json:"price_stale_at_entry"`
}

type ReportTargets struct {
	SL    float64 `json:"sl"`
	TP1   float64 `json:"tp1"`
	TP2   float64 `json:"tp2"`
	TP3   float64 `json:"tp3"`
	RR    float64 `json:"rr"`
	Turbo bool    `json:"turbo"`
}

type ReportExit struct {
	Price         *float64       `json:"price"`
	Time          *time.Time     `json:"time"`
	Status        Status         `json:"status"`
	Reason        string         `json:"reason"`
	Session       Session        `json:"session"`
	MarketContext *MarketContext `json:"market_context"`
	Snapshot      *CloseSnapshot `json:"snapshot"`
}

type ReportPerformance struct {
	PnLPct       float64  `json:"pnl_pct"`
	MAEPct       float64  `json:"mae_pct"`
	MFEPct       float64  `json:"mfe_pct"`
	HighestPrice float64  `json:"highest_price"`
	LowestPrice  float64  `json:"lowest_price"`
	BarsHeld     int      `json:"bars_held"`
	TP1Hit       bool     `json:"tp1_hit"`
	TP2Hit       bool     `json:"tp2_hit"`
	TP3Hit       bool     `json:"tp3_hit"`
	SlippagePct  float64  `json:"slippage_pct"`
	GapInfo      *GapInfo `json:"gap_info"`
}
