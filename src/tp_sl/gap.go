package tp_sl

import (
	"fmt"
	"math"

	"signaltracker/src/model"

	"github.com/shopspring/decimal"
)

// Cross is the direction in which a price breaches a level.
type Cross string

const (
	// CrossBelow is a stop: breached when price <= level.
	CrossBelow Cross = "below"
	// CrossAbove is a take-profit: breached when price >= level.
	CrossAbove Cross = "above"
)

func Breached(cross Cross, price, level float64) bool {
	switch cross {
	case CrossBelow:
		return price <= level
	case CrossAbove:
		return price >= level
	default:
		return false
	}
}

// FillInput is everything needed to price the exit at one level.
type FillInput struct {
	Asset       model.AssetClass
	Cross       Cross
	LevelName   string // SL, TP2, TP3
	Level       float64
	Entry       float64
	PrevPrice   float64
	PrevSession model.Session
	Price       float64
	Session     model.Session
	// ThresholdPct is the overshoot past the level, in percent of entry, above
	// which a breach between two polls is not a continuous move.
	ThresholdPct float64
}

// Fill is the realistic exit price at a breached level.
type Fill struct {
	Price       float64
	SlippagePct float64
	Gap         *model.GapInfo
}

// SessionOpened reports whether a stock moved from a gated session into the
// regular session between two observations. Crypto never opens.
func SessionOpened(asset model.AssetClass, prev, cur model.Session) bool {
	if asset != model.AssetStock {
		return false
	}
	return prev != "" && prev != model.SessionRegular && cur == model.SessionRegular
}

// IsGap decides whether a breach jumped over the level.
//
// gap when the level is breached now and
// - the previous observation was still on the safe side, or the market just opened, and
// - the market just opened, or the overshoot beyond the level exceeds ThresholdPct of entry.
func IsGap(in FillInput) bool {
	if !Breached(in.Cross, in.Price, in.Level) || in.Entry <= 0 {
		return false
	}
	opened := SessionOpened(in.Asset, in.PrevSession, in.Session)
	prevBreached := in.PrevPrice > 0 && Breached(in.Cross, in.PrevPrice, in.Level)
	if prevBreached && !opened {
		return false
	}
	if opened {
		return true
	}
	overshoot := math.Abs(in.Price-in.Level) / in.Entry * 100
	return overshoot > in.ThresholdPct
}

// ResolveFill prices the exit at a breached level. A clean touch fills at the
// level exactly with zero slippage. A gap fills at the observed price.
func ResolveFill(in FillInput) Fill {
	if !IsGap(in) {
		return Fill{Price: in.Level}
	}

	slip := SlippagePct(in.Price, in.Level, in.Entry)
	gapType := model.GapThroughTP
	note := fmt.Sprintf("%s gapped: filled at $%s instead of $%s (slippage %s%%)",
		in.LevelName, FormatPrice(in.Price), FormatPrice(in.Level), FormatPct(slip))
	if in.Cross == CrossBelow {
		gapType = model.GapThroughSL
		note = fmt.Sprintf("%s was $%s but price gapped to $%s (slippage %s%%)",
			in.LevelName, FormatPrice(in.Level), FormatPrice(in.Price), FormatPct(slip))
	}
	opened := SessionOpened(in.Asset, in.PrevSession, in.Session)
	if opened {
		note += " at session open"
	}

	return Fill{
		Price:       in.Price,
		SlippagePct: slip,
		Gap: &model.GapInfo{
			GapType:       gapType,
			Level:         in.LevelName,
			IntendedPrice: in.Level,
			FillPrice:     in.Price,
			PrevPrice:     in.PrevPrice,
			SlippagePct:   slip,
			SessionOpened: opened,
			Note:          note,
		},
	}
}

// SlippagePct is |fill-level|/entry*100 rounded to 2 places.
func SlippagePct(fill, level, entry float64) float64 {
	if entry <= 0 {
		return 0
	}
	diff := decimal.NewFromFloat(fill).Sub(decimal.NewFromFloat(level)).Abs()
	return diff.Div(decimal.NewFromFloat(entry)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// FormatPrice renders a price for reasons and notes, without trailing zeros.
func FormatPrice(p float64) string {
	return decimal.NewFromFloat(p).Round(4).String()
}

func FormatPct(p float64) string {
	return decimal.NewFromFloat(p).Round(2).String()
}
