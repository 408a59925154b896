package indicators

import (
	"fmt"
	"math"
	"time"

	"signaltracker/src/model"
)

const (
	Bull  = "BULL"
	Bear  = "BEAR"
	Mixed = "MIXED"

	VolAccumulation = "ACCUMULATION"
	VolDistribution = "DISTRIBUTION"
	VolNeutral      = "NEUTRAL"
)

var fibRatios = []struct {
	key   string
	ratio float64
}{
	{"fib_0", 0},
	{"fib_0.236", 0.236},
	{"fib_0.382", 0.382},
	{"fib_0.5", 0.5},
	{"fib_0.618", 0.618},
	{"fib_1.0", 1},
}

// Snapshot captures the full technical picture of a symbol from about a year
// of daily bars plus optional hourly bars, oldest first. The result is a flat
// map of named values frozen into the signal at entry.
func Snapshot(daily, hourly []model.Bar, now time.Time) (map[string]any, error) {
	if len(daily) == 0 {
		return nil, ErrNotEnoughBars
	}
	s := toSeries(daily)
	n := len(s.close)
	closePx := s.close[n-1]
	open, high, low, vol := s.open[n-1], s.high[n-1], s.low[n-1], s.volume[n-1]

	ema10 := lastEMA(s.close, 10)
	ema20 := lastEMA(s.close, 20)
	ema50 := lastEMA(s.close, 50)
	var ma150, ma200 float64
	if n >= 150 {
		ma150 = lastEMA(s.close, 150)
	}
	if n >= 200 {
		ma200 = lastEMA(s.close, 200)
	}

	atr14, err := ATR(daily, 14)
	if err != nil {
		atr14 = 0
	}
	rsi := RSI(s.close, 14)

	var volAvg20 float64
	if n >= 20 {
		volAvg20 = mean(s.volume[n-20:])
	}
	volRatio := 1.0
	if volAvg20 > 0 {
		volRatio = round(vol/volAvg20, 2)
	}

	body := math.Abs(closePx - open)
	candleRange := high - low
	var bodyPct float64
	if candleRange > 0 {
		bodyPct = body / candleRange
	}
	bullBody := closePx > open

	volDir := VolNeutral
	switch {
	case volRatio >= 1.5 && bullBody && closePx > ema20:
		volDir = VolAccumulation
	case volRatio >= 1.5 && (!bullBody || bodyPct < 0.1):
		volDir = VolDistribution
	}

	tfDaily := trend(closePx, ema20)
	tfWeekly := Mixed
	if weekly := WeeklyCloses(daily); len(weekly) >= 20 {
		tfWeekly = trend(weekly[len(weekly)-1], lastEMA(weekly, 20))
	}
	tf65, tf240 := Mixed, Mixed
	if len(hourly) >= 20 {
		hc := model.Closes(hourly)
		tf65 = trend(hc[len(hc)-1], lastEMA(hc, 20))
		if h4 := FourHourCloses(hourly); len(h4) >= 20 {
			tf240 = trend(h4[len(h4)-1], lastEMA(h4, 20))
		}
	}
	bulls := 0
	for _, tf := range []string{tf65, tf240, tfDaily, tfWeekly} {
		if tf == Bull {
			bulls++
		}
	}

	cloudTop, cloudBottom := ichimokuCloud(s)
	cloudPos := "inside"
	switch {
	case closePx > cloudTop:
		cloudPos = "above"
	case closePx < cloudBottom:
		cloudPos = "below"
	}

	fibHi, fibLo := maxOf(tail(s.high, 55)), minOf(tail(s.low, 55))
	fibRange := fibHi - fibLo

	var lrLower, lrMid, lrUpper float64
	if n >= 100 {
		lrLower, lrMid, lrUpper = LinearRegressionChannel(tail(s.close, 100), 2)
		lrMid = round(lrMid, 2)
		lrLower = round(lrLower, 2)
		lrUpper = round(lrUpper, 2)
	}

	var poc float64
	if n >= 10 {
		last50 := daily
		if n > 50 {
			last50 = daily[n-50:]
		}
		poc = round(PointOfControl(last50, 50), 2)
	}

	swingLo20 := minOf(tail(s.low, 20))

	snap := map[string]any{
		"timestamp": now.UTC().Format(time.RFC3339),
		"price":     round(closePx, 4),
		"open":      round(open, 4),
		"high":      round(high, 4),
		"low":       round(low, 4),
		"volume":    int64(vol),

		"ema10": round(ema10, 4),
		"ema20": round(ema20, 4),
		"ema50": round(ema50, 4),
		"ma150": round(ma150, 4),
		"ma200": round(ma200, 4),

		"rsi14": round(rsi, 1),
		"atr14": round(atr14, 4),

		"vol_ratio":     volRatio,
		"vol_avg20":     round(volAvg20, 0),
		"vol_direction": volDir,

		"body_pct":  round(bodyPct, 3),
		"bull_body": bullBody,

		"tf_65m":    tf65,
		"tf_240m":   tf240,
		"tf_daily":  tfDaily,
		"tf_weekly": tfWeekly,
		"tas":       fmt.Sprintf("%d/4", bulls),

		"cloud_position": cloudPos,
		"cloud_top":      round(cloudTop, 2),
		"cloud_bottom":   round(cloudBottom, 2),

		"lr_lower":    lrLower,
		"lr_mid":      lrMid,
		"lr_upper":    lrUpper,
		"poc":         poc,
		"swing_lo_20": round(swingLo20, 2),

		"dist_ema20_pct": pctFrom(closePx, ema20),
		"dist_ma150_pct": pctFrom(closePx, ma150),
		"dist_poc_pct":   pctFrom(closePx, poc),
	}
	for _, f := range fibRatios {
		snap[f.key] = round(fibHi-fibRange*f.ratio, 2)
	}
	return snap, nil
}

// ErrorSnapshot marks an enrichment that could not be computed.
func ErrorSnapshot(err error, now time.Time) map[string]any {
	return map[string]any{
		"error":     err.Error(),
		"timestamp": now.UTC().Format(time.RFC3339),
	}
}

func trend(price, ema float64) string {
	if price > ema {
		return Bull
	}
	return Bear
}

// ichimokuCloud returns the cloud edges projected onto the last bar: both
// spans are computed 26 bars back. Missing history reads as 0.
func ichimokuCloud(s series) (top, bottom float64) {
	n := len(s.close)
	at := n - 1 - 26
	midpoint := func(period int) float64 {
		if at-period+1 < 0 {
			return math.NaN()
		}
		return (maxOf(s.high[at-period+1:at+1]) + minOf(s.low[at-period+1:at+1])) / 2
	}

	spanA, spanB := 0.0, 0.0
	if at >= 0 {
		tenkan, kijun := midpoint(9), midpoint(26)
		if !math.IsNaN(tenkan) && !math.IsNaN(kijun) {
			spanA = (tenkan + kijun) / 2
		}
		if b := midpoint(52); !math.IsNaN(b) {
			spanB = b
		}
	}
	return math.Max(spanA, spanB), math.Min(spanA, spanB)
}
