package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV candle as returned by a market data source.
type Bar struct {
	Symbol   string          `json:"symbol"`
	Datetime time.Time       `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

func (b Bar) IsBullish() bool { return b.Close.GreaterThan(b.Open) }

// Closes returns the close series of bars as floats, oldest first.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close.InexactFloat64()
	}
	return out
}
