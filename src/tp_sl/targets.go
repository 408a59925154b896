package tp_sl

import (
	"math"

	"signaltracker/src/model"

	"github.com/shopspring/decimal"
)

var (
	atrSLMult  = decimal.RequireFromString("0.5")
	atrTP1Mult = decimal.RequireFromString("0.5")
	atrTP2Mult = decimal.RequireFromString("1.0")
	atrTP3Mult = decimal.RequireFromString("1.5")

	pctSL  = decimal.RequireFromString("0.998")
	pctTP1 = decimal.RequireFromString("1.005")
	pctTP2 = decimal.RequireFromString("1.008")
	pctTP3 = decimal.RequireFromString("1.012")
)

// Targets is the stop-loss and take-profit ladder for a long entry.
type Targets struct {
	SL     float64
	TP1    float64
	TP2    float64
	TP3    float64
	RR     float64
	Method model.TargetMethod
	// ATR is the value the ladder was built from, nil for the percentage fallback.
	ATR *float64
}

// ValidATR reports whether atr can be used to size targets.
func ValidATR(atr float64) bool {
	return atr > 0 && !math.IsNaN(atr) && !math.IsInf(atr, 0)
}

// ComputeTargets builds the target ladder for entry.
//
// ATR:
// - sl  = entry - 0.5*ATR
// - tp1 = entry + 0.5*ATR
// - tp2 = entry + 1.0*ATR
// - tp3 = entry + 1.5*ATR
//
// Fallback (ATR missing, zero, negative or not finite):
// - sl = entry*0.998, tp1 = entry*1.005, tp2 = entry*1.008, tp3 = entry*1.012
//
// The arithmetic is done in decimal so the ladder is exact; rr = (tp1-entry)/(entry-sl).
func ComputeTargets(entry float64, atr *float64) Targets {
	e := decimal.NewFromFloat(entry)

	var t Targets
	var sl, tp1, tp2, tp3 decimal.Decimal

	if atr != nil && ValidATR(*atr) {
		a := decimal.NewFromFloat(*atr)
		sl = e.Sub(a.Mul(atrSLMult))
		tp1 = e.Add(a.Mul(atrTP1Mult))
		tp2 = e.Add(a.Mul(atrTP2Mult))
		tp3 = e.Add(a.Mul(atrTP3Mult))
		t.Method = model.TargetMethodATR
		used := *atr
		t.ATR = &used
	} else {
		sl = e.Mul(pctSL)
		tp1 = e.Mul(pctTP1)
		tp2 = e.Mul(pctTP2)
		tp3 = e.Mul(pctTP3)
		t.Method = model.TargetMethodPctFallback
	}

	t.SL = sl.InexactFloat64()
	t.TP1 = tp1.InexactFloat64()
	t.TP2 = tp2.InexactFloat64()
	t.TP3 = tp3.InexactFloat64()
	t.RR = RiskReward(entry, t.SL, t.TP1)
	return t
}

// RiskReward returns (tp1-entry)/(entry-sl) rounded to 2 places, or 0 when
// the stop is not below entry.
func RiskReward(entry, sl, tp1 float64) float64 {
	e := decimal.NewFromFloat(entry)
	risk := e.Sub(decimal.NewFromFloat(sl))
	if !risk.IsPositive() {
		return 0
	}
	return decimal.NewFromFloat(tp1).Sub(e).Div(risk).Round(2).InexactFloat64()
}

// PctChange returns (to-from)/from*100 rounded to 2 places. Zero when from is not positive.
func PctChange(from, to float64) float64 {
	if from <= 0 {
		return 0
	}
	f := decimal.NewFromFloat(from)
	return decimal.NewFromFloat(to).Sub(f).Div(f).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// Round rounds v to places decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
