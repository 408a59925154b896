package stats

import (
	"math"
	"sort"

	"signaltracker/src/model"
	"signaltracker/src/tp_sl"
)

// Summary is the rollup of the closed set. It is recomputed from scratch on
// every call; nothing is maintained incrementally.
type Summary struct {
	TotalClosed          int     `json:"total_closed"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	Timeouts             int     `json:"timeouts"`
	WinRate              float64 `json:"win_rate"`
	AvgPnL               float64 `json:"avg_pnl"`
	BestTrade            float64 `json:"best_trade"`
	WorstTrade           float64 `json:"worst_trade"`
	AvgBarsHeld          float64 `json:"avg_bars_held"`
	TP1HitRate           float64 `json:"tp1_hit_rate"`
	TP2HitRate           float64 `json:"tp2_hit_rate"`
	AvgMAE               float64 `json:"avg_mae"`
	AvgMFE               float64 `json:"avg_mfe"`
	ProfitFactor         float64 `json:"profit_factor"`
	TotalGapSlippage     float64 `json:"total_gap_slippage"`
	GapAffectedTrades    int     `json:"gap_affected_trades"`
	AvgConvictionWinners float64 `json:"avg_conviction_winners"`
	AvgConvictionLosers  float64 `json:"avg_conviction_losers"`
}

// IsWin reports whether a closed signal counts as a win. Only the sign of
// pnl_pct matters, not the rule that closed it.
func IsWin(s model.Signal) bool {
	return s.PnLPct > 0
}

// Compute aggregates closed signals. An empty input yields the zero Summary.
func Compute(closed []model.Signal) Summary {
	n := len(closed)
	if n == 0 {
		return Summary{}
	}

	var (
		sum Summary

		pnlSum, barsSum, maeSum, mfeSum float64
		grossProfit, grossLoss          float64
		convWin, convLoss               float64
		tp1, tp2                        int
		slippage                        float64
	)
	best, worst := math.Inf(-1), math.Inf(1)

	for _, s := range closed {
		pnlSum += s.PnLPct
		barsSum += float64(s.BarsHeld)
		maeSum += s.MAEPct
		mfeSum += s.MFEPct
		best = math.Max(best, s.PnLPct)
		worst = math.Min(worst, s.PnLPct)

		if IsWin(s) {
			sum.Wins++
			grossProfit += s.PnLPct
			convWin += s.Conviction
		} else {
			sum.Losses++
			grossLoss += s.PnLPct
			convLoss += s.Conviction
		}
		if s.Status == model.StatusTimeout {
			sum.Timeouts++
		}
		if s.TP1Hit {
			tp1++
		}
		if s.TP2Hit {
			tp2++
		}
		if s.GapInfo != nil {
			sum.GapAffectedTrades++
			slippage += math.Abs(s.SlippagePct)
		}
	}

	total := float64(n)
	sum.TotalClosed = n
	sum.WinRate = tp_sl.Round(float64(sum.Wins)/total*100, 1)
	sum.AvgPnL = tp_sl.Round(pnlSum/total, 2)
	sum.BestTrade = tp_sl.Round(best, 2)
	sum.WorstTrade = tp_sl.Round(worst, 2)
	sum.AvgBarsHeld = tp_sl.Round(barsSum/total, 1)
	sum.TP1HitRate = tp_sl.Round(float64(tp1)/total*100, 1)
	sum.TP2HitRate = tp_sl.Round(float64(tp2)/total*100, 1)
	sum.AvgMAE = tp_sl.Round(maeSum/total, 2)
	sum.AvgMFE = tp_sl.Round(mfeSum/total, 2)
	sum.TotalGapSlippage = tp_sl.Round(slippage, 2)

	if grossLoss < 0 {
		sum.ProfitFactor = tp_sl.Round(grossProfit/math.Abs(grossLoss), 2)
	}
	if sum.Wins > 0 {
		sum.AvgConvictionWinners = tp_sl.Round(convWin/float64(sum.Wins), 1)
	}
	if sum.Losses > 0 {
		sum.AvgConvictionLosers = tp_sl.Round(convLoss/float64(sum.Losses), 1)
	}
	return sum
}

// RegimeStats is the performance of the trades entered under one regime.
type RegimeStats struct {
	Regime  string  `json:"regime"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
	AvgPnL  float64 `json:"avg_pnl"`
	Best    float64 `json:"best"`
	Worst   float64 `json:"worst"`
}

// EntryRegime is the regime a signal was entered under: the market context
// regime, else the scan regime, else "unknown".
func EntryRegime(s model.Signal) string {
	if r := s.EntryMarketContext.Regime; r != "" {
		return r
	}
	if s.Regime != "" {
		return s.Regime
	}
	return model.RegimeUnknown
}

// ByRegime groups closed signals by entry regime, sorted by regime name.
func ByRegime(closed []model.Signal) []RegimeStats {
	groups := map[string][]model.Signal{}
	for _, s := range closed {
		r := EntryRegime(s)
		groups[r] = append(groups[r], s)
	}

	out := make([]RegimeStats, 0, len(groups))
	for regime, sigs := range groups {
		c := Compute(sigs)
		out = append(out, RegimeStats{
			Regime:  regime,
			Trades:  c.TotalClosed,
			Wins:    c.Wins,
			WinRate: c.WinRate,
			AvgPnL:  c.AvgPnL,
			Best:    c.BestTrade,
			Worst:   c.WorstTrade,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Regime < out[j].Regime })
	return out
}
