package connectors

import (
	"context"
	"errors"
	"testing"
	"time"

	"signaltracker/src/model"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStocks struct {
	quotes map[string][2]float64
	bars   map[string][]model.Bar
	err    error
	calls  []string
}

func (f *fakeStocks) Quote(_ context.Context, symbol string) (float64, float64, error) {
	f.calls = append(f.calls, "quote:"+symbol)
	if f.err != nil {
		return 0, 0, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return 0, 0, ErrNoData
	}
	return q[0], q[1], nil
}

func (f *fakeStocks) Bars(_ context.Context, symbol, _, interval string) ([]model.Bar, error) {
	f.calls = append(f.calls, "bars:"+symbol+":"+interval)
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.bars[symbol]
	if !ok || interval != "1d" {
		return nil, ErrNoData
	}
	return b, nil
}

type fakeCrypto struct {
	price, prev float64
	bars        []model.Bar
	err         error
}

func (f *fakeCrypto) Quote(string) (float64, float64, error) { return f.price, f.prev, f.err }

func (f *fakeCrypto) DailyBars(string, int) ([]model.Bar, error) { return f.bars, f.err }

func (f *fakeCrypto) HourlyBars(string, int) ([]model.Bar, error) { return nil, ErrNoData }

type fixedSessions model.Session

func (s fixedSessions) Session(model.AssetClass, time.Time) model.Session { return model.Session(s) }

func closesBars(closes ...float64) []model.Bar {
	out := make([]model.Bar, len(closes))
	for i, c := range closes {
		v := decimal.NewFromFloat(c)
		out[i] = model.Bar{
			Datetime: time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC),
			Open:     v, High: v.Add(decimal.NewFromInt(1)), Low: v.Sub(decimal.NewFromInt(1)), Close: v,
			Volume: decimal.NewFromInt(100),
		}
	}
	return out
}

func newTestProvider(stocks *fakeStocks, crypto *fakeCrypto, session model.Session) *MarketProvider {
	return &MarketProvider{
		stocks:    stocks,
		crypto:    crypto,
		sessions:  fixedSessions(session),
		vix:       "^VIX",
		benchmark: "SPY",
		now:       func() time.Time { return time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC) },
		log:       logger.NewEntry(logger.StandardLogger()),
	}
}

func TestRegimeFromVIX(t *testing.T) {
	tests := []struct {
		vix  float64
		want string
	}{
		{35, RegimeHighVol},
		{30, RegimeBear},
		{26, RegimeBear},
		{25, RegimeChoppy},
		{20.5, RegimeChoppy},
		{20, RegimeTrendingBull},
		{12, RegimeTrendingBull},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RegimeFromVIX(tt.vix), "vix=%v", tt.vix)
	}
}

func TestMarketProvider_GetPrice_Stock(t *testing.T) {
	stocks := &fakeStocks{quotes: map[string][2]float64{"AAPL": {190, 185}}}
	p := newTestProvider(stocks, &fakeCrypto{}, model.SessionRegular)

	q, err := p.GetPrice(context.Background(), "AAPL", model.AssetStock)
	require.NoError(t, err)
	assert.Equal(t, 190.0, q.Price)
	assert.Equal(t, 2.7, q.GapPct)
	assert.False(t, q.IsStale)
	assert.Equal(t, DelayStock, q.DelayWarning)
}

func TestMarketProvider_GetPrice_StaleDuringRegularSession(t *testing.T) {
	stocks := &fakeStocks{quotes: map[string][2]float64{"AAPL": {185, 185}}}

	q, err := newTestProvider(stocks, &fakeCrypto{}, model.SessionRegular).GetPrice(context.Background(), "AAPL", model.AssetStock)
	require.NoError(t, err)
	assert.True(t, q.IsStale)

	q, err = newTestProvider(stocks, &fakeCrypto{}, model.SessionClosed).GetPrice(context.Background(), "AAPL", model.AssetStock)
	require.NoError(t, err)
	assert.False(t, q.IsStale, "an unchanged price outside the session is expected")
}

func TestMarketProvider_GetPrice_Invalid(t *testing.T) {
	stocks := &fakeStocks{quotes: map[string][2]float64{"ZERO": {0, 10}}}
	p := newTestProvider(stocks, &fakeCrypto{}, model.SessionRegular)

	_, err := p.GetPrice(context.Background(), "ZERO", model.AssetStock)
	require.Error(t, err)

	_, err = p.GetPrice(context.Background(), "MISSING", model.AssetStock)
	require.Error(t, err)
}

func TestMarketProvider_GetPrice_CryptoFallsBackToYahoo(t *testing.T) {
	stocks := &fakeStocks{quotes: map[string][2]float64{"BTC-USD": {64000, 63000}}}
	crypto := &fakeCrypto{err: errors.New("binance down")}
	p := newTestProvider(stocks, crypto, model.SessionClosed)

	q, err := p.GetPrice(context.Background(), "BTC", model.AssetCrypto)
	require.NoError(t, err)
	assert.Equal(t, 64000.0, q.Price)
	assert.Equal(t, DelayCrypto, q.DelayWarning)
	assert.Equal(t, "yahoo_chart", q.Source)
	assert.Contains(t, stocks.calls, "quote:BTC-USD")
}

func TestMarketProvider_GetATR14(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	stocks := &fakeStocks{bars: map[string][]model.Bar{"AAPL": closesBars(closes...)}}
	p := newTestProvider(stocks, &fakeCrypto{}, model.SessionRegular)

	atr, err := p.GetATR14(context.Background(), "AAPL", model.AssetStock)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, atr, 1e-9)

	stocks.bars["AAPL"] = closesBars(100, 101, 102)
	_, err = p.GetATR14(context.Background(), "AAPL", model.AssetStock)
	require.Error(t, err)
}

func TestMarketProvider_GetMarketContext(t *testing.T) {
	stocks := &fakeStocks{bars: map[string][]model.Bar{
		"^VIX": closesBars(18, 22.37),
		"SPY":  closesBars(500, 495),
	}}
	p := newTestProvider(stocks, &fakeCrypto{}, model.SessionRegular)

	mc, err := p.GetMarketContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 22.4, mc.VIX)
	assert.Equal(t, 495.0, mc.SPYClose)
	assert.Equal(t, -1.0, mc.SPYChangePct)
	assert.Equal(t, RegimeChoppy, mc.Regime)
	assert.Empty(t, mc.Error)
}

func TestMarketProvider_GetMarketContext_Failure(t *testing.T) {
	p := newTestProvider(&fakeStocks{err: errors.New("timeout")}, &fakeCrypto{}, model.SessionRegular)

	mc, err := p.GetMarketContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.RegimeUnknown, mc.Regime)
	assert.Equal(t, "timeout", mc.Error)
}

func TestMarketProvider_GetIndicatorSnapshot_Failure(t *testing.T) {
	p := newTestProvider(&fakeStocks{err: errors.New("timeout")}, &fakeCrypto{}, model.SessionRegular)

	snap, err := p.GetIndicatorSnapshot(context.Background(), "AAPL", model.AssetStock)
	require.Error(t, err)
	assert.Equal(t, "timeout", snap["error"])
}
