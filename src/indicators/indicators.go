package indicators

import (
	"errors"
	"math"
	"sort"
	"time"

	"signaltracker/src/model"

	"github.com/shopspring/decimal"
)

var ErrNotEnoughBars = errors.New("indicators: not enough bars")

type series struct {
	open, high, low, close, volume []float64
	times                          []time.Time
}

func toSeries(bars []model.Bar) series {
	s := series{
		open:   make([]float64, len(bars)),
		high:   make([]float64, len(bars)),
		low:    make([]float64, len(bars)),
		close:  make([]float64, len(bars)),
		volume: make([]float64, len(bars)),
		times:  make([]time.Time, len(bars)),
	}
	for i, b := range bars {
		s.open[i] = b.Open.InexactFloat64()
		s.high[i] = b.High.InexactFloat64()
		s.low[i] = b.Low.InexactFloat64()
		s.close[i] = b.Close.InexactFloat64()
		s.volume[i] = b.Volume.InexactFloat64()
		s.times[i] = b.Datetime
	}
	return s
}

// EMA returns the exponentially weighted mean of values with the given span,
// using bias-adjusted weights so early values are not dragged toward zero.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if span < 1 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	var num, den float64
	for i, v := range values {
		num = v + (1-alpha)*num
		den = 1 + (1-alpha)*den
		out[i] = num / den
	}
	return out
}

func lastEMA(values []float64, span int) float64 {
	if len(values) == 0 {
		return 0
	}
	e := EMA(values, span)
	return e[len(e)-1]
}

// TrueRange of each bar. The first bar has no previous close and uses high-low.
func TrueRange(bars []model.Bar) []float64 {
	s := toSeries(bars)
	return trueRange(s)
}

func trueRange(s series) []float64 {
	tr := make([]float64, len(s.close))
	for i := range s.close {
		hl := s.high[i] - s.low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		prev := s.close[i-1]
		tr[i] = math.Max(hl, math.Max(math.Abs(s.high[i]-prev), math.Abs(s.low[i]-prev)))
	}
	return tr
}

// ATR is the simple mean of the last period true ranges. It needs period+1
// bars so every range in the window has a previous close.
func ATR(bars []model.Bar, period int) (float64, error) {
	if period < 1 || len(bars) < period+1 {
		return 0, ErrNotEnoughBars
	}
	tr := TrueRange(bars)
	return mean(tr[len(tr)-period:]), nil
}

// RSI over the last period close-to-close changes using simple means.
// A window with no movement at all reads 50.
func RSI(closes []float64, period int) float64 {
	if period < 1 || len(closes) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)
	if loss == 0 {
		if gain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+gain/loss)
}

// LinearRegressionChannel fits a least-squares line through closes and returns
// the last fitted value with a band of k population standard deviations.
func LinearRegressionChannel(closes []float64, k float64) (lower, mid, upper float64) {
	n := float64(len(closes))
	if n < 2 {
		return 0, 0, 0
	}
	var sx, sy, sxx, sxy float64
	for i, y := range closes {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept := (sy - slope*sx) / n

	var ss float64
	for i, y := range closes {
		r := y - (slope*float64(i) + intercept)
		ss += r * r
	}
	std := math.Sqrt(ss / n)
	mid = slope*(n-1) + intercept
	return mid - k*std, mid, mid + k*std
}

// PointOfControl splits the high/low range of bars into bins and returns the
// midpoint of the bin that traded the most volume, spreading each bar's volume
// over the bins its range overlaps.
func PointOfControl(bars []model.Bar, bins int) float64 {
	s := toSeries(bars)
	if len(s.close) == 0 || bins < 1 {
		return 0
	}
	lo, hi := minOf(s.low), maxOf(s.high)
	if hi <= lo {
		return lo
	}
	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for b := range edges {
		edges[b] = lo + width*float64(b)
	}

	volAt := make([]float64, bins)
	for i := range s.close {
		barLo, barHi, vol := s.low[i], s.high[i], s.volume[i]
		total := barHi - barLo
		if total <= 0 {
			total = 1
		}
		for b := 0; b < bins; b++ {
			if edges[b+1] >= barLo && edges[b] <= barHi {
				overlap := math.Min(barHi, edges[b+1]) - math.Max(barLo, edges[b])
				volAt[b] += vol * (overlap / total)
			}
		}
	}

	best := 0
	for b := 1; b < bins; b++ {
		if volAt[b] > volAt[best] {
			best = b
		}
	}
	return (edges[best] + edges[best+1]) / 2
}

// WeeklyCloses collapses daily bars into the last close of each ISO week.
func WeeklyCloses(bars []model.Bar) []float64 {
	return bucketCloses(bars, func(t time.Time) int64 {
		y, w := t.ISOWeek()
		return int64(y*100 + w)
	})
}

// FourHourCloses collapses intraday bars into the last close of each 4h bucket.
func FourHourCloses(bars []model.Bar) []float64 {
	return bucketCloses(bars, func(t time.Time) int64 {
		return t.Truncate(4 * time.Hour).Unix()
	})
}

func bucketCloses(bars []model.Bar, key func(time.Time) int64) []float64 {
	sorted := make([]model.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Datetime.Before(sorted[j].Datetime) })

	var out []float64
	var last int64
	for i, b := range sorted {
		k := key(b.Datetime)
		if i > 0 && k == last {
			out[len(out)-1] = b.Close.InexactFloat64()
			continue
		}
		out = append(out, b.Close.InexactFloat64())
		last = k
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func minOf(v []float64) float64 {
	m := math.Inf(1)
	for _, x := range v {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	return m
}

func tail(v []float64, n int) []float64 {
	if len(v) <= n {
		return v
	}
	return v[len(v)-n:]
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func pctFrom(price, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return round((price-ref)/ref*100, 2)
}
