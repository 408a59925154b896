package report

import (
	"fmt"
	"math"

	"signaltracker/src/model"
	"signaltracker/src/tp_sl"
)

// Analysis keys. sl_review, tp_review and conviction_accuracy are always
// present; the rest only when they have something to say.
const (
	KeySLReview    = "sl_review"
	KeyTPReview    = "tp_review"
	KeyConviction  = "conviction_accuracy"
	KeyMAEInsight  = "mae_insight"
	KeySpeed       = "speed"
	KeyGapImpact   = "gap_impact"
	KeySessionNote = "session_note"
	KeyRegimeShift = "regime_shift"
)

const (
	highConviction    = 70.0
	lowConviction     = 50.0
	slowTradeBars     = 14
	tightStopMFEPct   = 0.5
	winnerDrawdownPct = -0.5
	severeDrawdownPct = -2.0
	flatPnLPct        = 1.0
	bigWinPnLPct      = 2.0
)

// Generate projects a closed signal into its case report. The result only
// depends on the signal, so generating twice for the same record yields the
// same document.
func Generate(s model.Signal) model.CaseReport {
	generatedAt := s.EntryTime
	if s.ClosedAt != nil {
		generatedAt = *s.ClosedAt
	}

	doc := model.ReportDocument{
		ReportVersion: model.ReportVersion,
		GeneratedAt:   generatedAt,
		SignalID:      s.ID,
		Ticker:        s.Ticker,
		AssetType:     s.AssetClass,
		Entry: model.ReportEntry{
			Price:             s.EntryPrice,
			Time:              s.EntryTime,
			Session:           s.EntrySession,
			Conviction:        s.Conviction,
			Heat:              s.Heat,
			PillarScores:      s.PillarScores,
			TAS:               s.TAS,
			Trend:             s.Trend,
			TANote:            s.TANote,
			Regime:            s.Regime,
			MarketContext:     s.EntryMarketContext,
			IndicatorSnapshot: s.EntrySnapshot,
			TargetMethod:      s.TargetMethod,
			ATRAtEntry:        s.ATRAtEntry,
			PriceStaleAtEntry: s.PriceStaleAtEntry,
		},
		Targets: model.ReportTargets{
			SL:    s.SL,
			TP1:   s.TP1,
			TP2:   s.TP2,
			TP3:   s.TP3,
			RR:    s.RiskReward,
			Turbo: s.Turbo,
		},
		Exit: model.ReportExit{
			Price:         s.ClosePrice,
			Time:          s.ClosedAt,
			Status:        s.Status,
			Reason:        s.CloseReason,
			Session:       s.CloseSession,
			MarketContext: s.CloseMarketContext,
			Snapshot:      s.CloseSnapshot,
		},
		Performance: model.ReportPerformance{
			PnLPct:       s.PnLPct,
			MAEPct:       s.MAEPct,
			MFEPct:       s.MFEPct,
			HighestPrice: s.HighestPrice,
			LowestPrice:  s.LowestPrice,
			BarsHeld:     s.BarsHeld,
			TP1Hit:       s.TP1Hit,
			TP2Hit:       s.TP2Hit,
			TP3Hit:       s.TP3Hit,
			SlippagePct:  s.SlippagePct,
			GapInfo:      s.GapInfo,
		},
		Analysis: Analyze(s),
	}

	return model.CaseReport{
		SignalID:    s.ID,
		Ticker:      s.Ticker,
		Status:      s.Status,
		Document:    doc,
		GeneratedAt: generatedAt,
	}
}

// Analyze writes the free-text observations of a case report.
func Analyze(s model.Signal) map[string]string {
	a := map[string]string{
		KeySLReview:   slReview(s),
		KeyTPReview:   tpReview(s),
		KeyConviction: convictionReview(s),
	}

	switch {
	case s.PnLPct > 0 && s.MAEPct < winnerDrawdownPct:
		a[KeyMAEInsight] = fmt.Sprintf("Winner but saw %s%% drawdown. Risk management held.", num(s.MAEPct))
	case s.PnLPct < 0 && s.MAEPct < severeDrawdownPct:
		a[KeyMAEInsight] = fmt.Sprintf("Severe drawdown of %s%%. SL may need adjustment.", num(s.MAEPct))
	}

	switch {
	case s.BarsHeld <= 1 && math.Abs(s.PnLPct) > flatPnLPct:
		a[KeySpeed] = "Fast move: signal resolved within 1 day."
	case s.BarsHeld > slowTradeBars && math.Abs(s.PnLPct) < flatPnLPct:
		a[KeySpeed] = fmt.Sprintf("Slow grind: low P&L after %d days. Capital could be better deployed.", s.BarsHeld)
	}

	if s.GapInfo != nil {
		a[KeyGapImpact] = fmt.Sprintf("Gap detected. Slippage: %s%%. Real fills would differ from target.", num(s.SlippagePct))
	}

	switch s.EntrySession {
	case model.SessionPremarket:
		a[KeySessionNote] = "Entered during pre-market. Prices may have been less reliable."
	case model.SessionAfterhours:
		a[KeySessionNote] = "Entered after hours. Prices may have been less reliable."
	case model.SessionClosed:
		a[KeySessionNote] = "Entered while market was closed. Entry price was previous close."
	}

	if s.CloseMarketContext != nil {
		from, to := s.EntryMarketContext.Regime, s.CloseMarketContext.Regime
		if from != "" && to != "" && from != to && from != model.RegimeUnknown && to != model.RegimeUnknown {
			a[KeyRegimeShift] = fmt.Sprintf("Regime changed from '%s' to '%s' during trade.", from, to)
		}
	}
	return a
}

func slReview(s model.Signal) string {
	if s.Status == model.StatusStoppedOut {
		switch {
		case s.MFEPct > tightStopMFEPct:
			return fmt.Sprintf("Trade went +%s%% before reversing to SL. MFE suggests SL may be too tight.", num(s.MFEPct))
		case s.MFEPct <= 0:
			return "Trade never went positive. Entry timing was poor or direction was wrong."
		default:
			return fmt.Sprintf("Stopped out with little favorable movement (+%s%%). SL placement was reasonable.", num(s.MFEPct))
		}
	}
	risk := 0.0
	if s.EntryPrice > 0 {
		risk = tp_sl.PctChange(s.EntryPrice, s.SL)
	}
	if s.MAEPct <= risk {
		return fmt.Sprintf("Drawdown of %s%% reached the stop distance (%s%%).", num(s.MAEPct), num(risk))
	}
	return fmt.Sprintf("SL held: worst drawdown %s%% against a stop distance of %s%%.", num(s.MAEPct), num(risk))
}

func tpReview(s model.Signal) string {
	switch {
	case s.TP3Hit:
		return "Full target ladder reached. TP3 hit."
	case s.Status == model.StatusTimeout && s.MFEPct > 0:
		return fmt.Sprintf("Trade hit +%s%% but didn't reach TP. Consider tighter targets.", num(s.MFEPct))
	case s.TP1Hit && s.Status == model.StatusStoppedOut:
		return "TP1 was hit but trade reversed to SL. Consider taking profit at TP1."
	case s.TP2Hit:
		return "Reached TP2 without extending to TP3."
	case s.TP1Hit:
		return "Reached TP1 without extending to TP2."
	default:
		return fmt.Sprintf("No take-profit level reached. Best excursion +%s%%.", num(s.MFEPct))
	}
}

func convictionReview(s model.Signal) string {
	conv := s.Conviction
	switch {
	case s.Turbo && conv == 0:
		return "No conviction score recorded for this signal."
	case conv >= highConviction && s.PnLPct < 0:
		return fmt.Sprintf("HIGH conviction (%s%%) but LOSS. Investigate pillar scores.", num(conv))
	case conv < lowConviction && s.PnLPct > bigWinPnLPct:
		return fmt.Sprintf("LOW conviction (%s%%) but BIG WIN (+%s%%). Scoring may underweight something.", num(conv), num(s.PnLPct))
	case s.PnLPct > 0:
		return fmt.Sprintf("Conviction %s%% confirmed by a win (+%s%%).", num(conv), num(s.PnLPct))
	default:
		return fmt.Sprintf("Conviction %s%% with a %s%% result.", num(conv), num(s.PnLPct))
	}
}

func num(v float64) string {
	return fmt.Sprintf("%g", tp_sl.Round(v, 2))
}
