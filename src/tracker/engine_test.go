package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signaltracker/src/database"
	"signaltracker/src/model"
	"signaltracker/src/repository"
	"signaltracker/src/risk"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var t0 = time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)

type fakeMarket struct {
	mu         sync.Mutex
	prices     map[string]float64
	priceErr   map[string]error
	stale      map[string]bool
	atr        map[string]float64
	ctxErr     error
	regime     string
	ctxCalls   int
	priceCalls int
	// onPrice runs inside GetPrice, between the engine's scan filter and its store.
	onPrice func(symbol string)
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		prices:   map[string]float64{},
		priceErr: map[string]error{},
		stale:    map[string]bool{},
		atr:      map[string]float64{},
		regime:   "Trending Bull",
	}
}

func (m *fakeMarket) set(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = price
}

func (m *fakeMarket) GetPrice(_ context.Context, symbol string, _ model.AssetClass) (model.PriceQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceCalls++
	if m.onPrice != nil {
		m.onPrice(symbol)
	}
	if err := m.priceErr[symbol]; err != nil {
		return model.PriceQuote{}, err
	}
	p, ok := m.prices[symbol]
	if !ok {
		return model.PriceQuote{}, errors.New("no data")
	}
	return model.PriceQuote{Symbol: symbol, Price: p, IsStale: m.stale[symbol], DelayWarning: "15-20min delayed"}, nil
}

func (m *fakeMarket) GetATR14(_ context.Context, symbol string, _ model.AssetClass) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.atr[symbol]
	if !ok {
		return 0, errors.New("not enough bars")
	}
	return a, nil
}

func (m *fakeMarket) GetIndicatorSnapshot(_ context.Context, symbol string, _ model.AssetClass) (map[string]any, error) {
	return map[string]any{"rsi14": 55.0, "tas": "3/4"}, nil
}

func (m *fakeMarket) GetMarketContext(context.Context) (model.MarketContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxCalls++
	if m.ctxErr != nil {
		return model.MarketContext{Regime: model.RegimeUnknown, Error: m.ctxErr.Error()}, m.ctxErr
	}
	return model.MarketContext{VIX: 15, SPYClose: 500, Regime: m.regime, Timestamp: t0}, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

// marketHours lets a test move the stock session between passes.
type marketHours struct{ current model.Session }

func (h *marketHours) Session(asset model.AssetClass, now time.Time) model.Session {
	return risk.FixedSession(h.current).Session(asset, now)
}

type recorder struct{ closed []model.Signal }

func (r *recorder) SignalClosed(s model.Signal) { r.closed = append(r.closed, s) }

type harness struct {
	engine  *Engine
	market  *fakeMarket
	clock   *fakeClock
	hours   *marketHours
	signals *repository.SignalRepository
	reports *repository.ReportRepository
	closes  *recorder
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := newTestDB(t)
	h := &harness{
		market:  newFakeMarket(),
		clock:   &fakeClock{t: t0},
		hours:   &marketHours{current: model.SessionRegular},
		signals: repository.NewSignalRepository().WithDB(db),
		reports: repository.NewReportRepository().WithDB(db),
		closes:  &recorder{},
	}
	h.engine = New(h.market, h.hours, h.signals, h.reports, DefaultConfig(),
		WithClock(h.clock.now),
		WithCloseListener(h.closes),
	)
	return h
}

// openACME creates the reference signal: entry 100, ATR 4.
func (h *harness) openACME(t *testing.T) *model.Signal {
	t.Helper()
	h.market.set("ACME", 100)
	h.market.atr["ACME"] = 4
	s, err := h.engine.Create(context.Background(), "acme", model.AssetStock, &ScanData{Conviction: 72, Heat: "HOT"})
	require.NoError(t, err)
	return s
}

func (h *harness) pass(t *testing.T, price float64) *PassResult {
	t.Helper()
	h.market.set("ACME", price)
	res, err := h.engine.EvaluateAll(context.Background())
	require.NoError(t, err)
	return res
}

func TestCreate_ATRTargets(t *testing.T) {
	h := newHarness(t)
	s := h.openACME(t)

	assert.Equal(t, "ACME", s.Ticker)
	assert.Equal(t, model.StatusOpen, s.Status)
	assert.Equal(t, model.TargetMethodATR, s.TargetMethod)
	assert.Equal(t, 98.0, s.SL)
	assert.Equal(t, 102.0, s.TP1)
	assert.Equal(t, 104.0, s.TP2)
	assert.Equal(t, 106.0, s.TP3)
	assert.Equal(t, 1.0, s.RiskReward)
	require.NotNil(t, s.ATRAtEntry)
	assert.Equal(t, 4.0, *s.ATRAtEntry)
	assert.Equal(t, model.SessionRegular, s.EntrySession)
	assert.Equal(t, "Trending Bull", s.EntryMarketContext.Regime)
	assert.Equal(t, "Trending Bull", s.Regime)
	assert.False(t, s.Turbo)
	assert.Equal(t, 72.0, s.Conviction)

	stored, err := h.signals.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StateActive, stored.State)
}

func TestCreate_TurboWithFallbackTargets(t *testing.T) {
	h := newHarness(t)
	h.market.set("BTC-USD", 50000)

	s, err := h.engine.Create(context.Background(), "BTC-USD", model.AssetCrypto, nil)
	require.NoError(t, err)

	assert.Equal(t, model.TargetMethodPctFallback, s.TargetMethod)
	assert.Nil(t, s.ATRAtEntry)
	assert.Equal(t, 49900.0, s.SL)
	assert.Equal(t, 50250.0, s.TP1)
	assert.Equal(t, 50400.0, s.TP2)
	assert.Equal(t, 50600.0, s.TP3)
	assert.True(t, s.Turbo)
	assert.Equal(t, "TURBO", s.Heat)
	assert.Equal(t, "TURBO", s.Trend)
	assert.Equal(t, 0.0, s.Conviction)
}

func TestCreate_EnrichmentFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.market.set("ACME", 100)
	h.market.ctxErr = errors.New("vix feed down")

	s, err := h.engine.Create(context.Background(), "ACME", model.AssetStock, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RegimeUnknown, s.EntryMarketContext.Regime)
	assert.Equal(t, "vix feed down", s.EntryMarketContext.Error)
	assert.Equal(t, model.TargetMethodPctFallback, s.TargetMethod)
}

func TestCreate_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.market.set("ZERO", 0)

	_, err := h.engine.Create(ctx, "MISSING", model.AssetStock, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = h.engine.Create(ctx, "ZERO", model.AssetStock, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = h.engine.Create(ctx, "ACME", model.AssetClass("bond"), nil)
	assert.ErrorIs(t, err, ErrInvalidAssetClass)

	_, err = h.engine.Create(ctx, "  ", model.AssetStock, nil)
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	active, err := h.signals.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEvaluate_TP1IsNotTerminal(t *testing.T) {
	h := newHarness(t)
	s := h.openACME(t)

	res := h.pass(t, 103)
	require.Len(t, res.Active, 1)
	assert.Empty(t, res.RecentlyClosed)

	got := res.Active[0]
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, model.StatusOpen, got.Status)
	assert.True(t, got.TP1Hit)
	require.NotNil(t, got.TP1HitTime)
	assert.False(t, got.TP2Hit)
	assert.Equal(t, 3.0, got.PnLPct)
	assert.Equal(t, 3.0, got.MFEPct)
}

func TestEvaluate_StopGapAtOpen(t *testing.T) {
	h := newHarness(t)
	s := h.openACME(t)
	h.pass(t, 99)

	res := h.pass(t, 95)
	require.Len(t, res.RecentlyClosed, 1)
	assert.Empty(t, res.Active)

	got := res.RecentlyClosed[0]
	assert.Equal(t, model.StatusStoppedOut, got.Status)
	require.NotNil(t, got.ClosePrice)
	assert.Equal(t, 95.0, *got.ClosePrice)
	assert.Equal(t, 3.0, got.SlippagePct)
	assert.Equal(t, -5.0, got.PnLPct)
	require.NotNil(t, got.GapInfo)
	assert.Equal(t, model.GapThroughSL, got.GapInfo.GapType)
	assert.Equal(t, 99.0, got.GapInfo.PrevPrice)
	assert.Equal(t, "SL hit at $98 (gap fill at $95, slippage 3%)", got.CloseReason)
	require.NotNil(t, got.CloseSnapshot)
	assert.Equal(t, 95.0, got.CloseSnapshot.Price)
	require.NotNil(t, got.CloseMarketContext)

	stored, err := h.signals.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateClosed, stored.State)

	r, err := h.reports.GetReport(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, model.StatusStoppedOut, r.Document.Exit.Status)

	require.Len(t, h.closes.closed, 1)
	assert.Equal(t, s.ID, h.closes.closed[0].ID)
	assert.Equal(t, 1, res.Stats.TotalClosed)
}

func TestEvaluate_CleanTouchFillsAtLevel(t *testing.T) {
	h := newHarness(t)
	h.openACME(t)

	res := h.pass(t, 97.9)
	require.Len(t, res.RecentlyClosed, 1)
	got := res.RecentlyClosed[0]
	assert.Equal(t, 98.0, *got.ClosePrice)
	assert.Equal(t, 0.0, got.SlippagePct)
	assert.Nil(t, got.GapInfo)
	assert.Equal(t, -2.0, got.PnLPct)
	assert.Equal(t, "SL hit at $98", got.CloseReason)
}

func TestEvaluate_TakeProfitPrecedence(t *testing.T) {
	t.Run("tp3 wins over tp2", func(t *testing.T) {
		h := newHarness(t)
		h.openACME(t)

		res := h.pass(t, 106.1)
		require.Len(t, res.RecentlyClosed, 1)
		got := res.RecentlyClosed[0]
		assert.Equal(t, model.StatusTP3Hit, got.Status)
		assert.Equal(t, 106.0, *got.ClosePrice)
		assert.Equal(t, 6.0, got.PnLPct)
		assert.True(t, got.TP1Hit)
		assert.True(t, got.TP2Hit)
		assert.True(t, got.TP3Hit)
		assert.Equal(t, "TP3 hit at $106", got.CloseReason)
	})
	t.Run("tp2 closes below tp3", func(t *testing.T) {
		h := newHarness(t)
		h.openACME(t)

		res := h.pass(t, 104)
		require.Len(t, res.RecentlyClosed, 1)
		got := res.RecentlyClosed[0]
		assert.Equal(t, model.StatusTP2Hit, got.Status)
		assert.Equal(t, 104.0, *got.ClosePrice)
		assert.False(t, got.TP3Hit)
	})
}

func TestEvaluate_Timeout(t *testing.T) {
	h := newHarness(t)
	h.openACME(t)

	for day := 1; day < 30; day++ {
		h.clock.t = t0.Add(time.Duration(day) * 24 * time.Hour)
		res := h.pass(t, 100.5)
		require.Empty(t, res.RecentlyClosed, "closed early on day %d", day)
		require.Equal(t, day, res.Active[0].BarsHeld)
	}

	h.clock.t = t0.Add(30 * 24 * time.Hour)
	res := h.pass(t, 100.5)
	require.Len(t, res.RecentlyClosed, 1)
	got := res.RecentlyClosed[0]
	assert.Equal(t, model.StatusTimeout, got.Status)
	assert.Equal(t, 100.5, *got.ClosePrice)
	assert.Equal(t, 0.5, got.PnLPct)
	assert.Equal(t, 30, got.BarsHeld)
	assert.Equal(t, "30-day timeout at $100.5", got.CloseReason)
}

func TestEvaluate_StockClosingRulesWaitForRegularSession(t *testing.T) {
	h := newHarness(t)
	h.openACME(t)

	h.hours.current = model.SessionAfterhours
	res := h.pass(t, 95)
	require.Empty(t, res.RecentlyClosed)
	require.Len(t, res.Active, 1)
	tracked := res.Active[0]
	assert.Equal(t, 95.0, tracked.LowestPrice)
	assert.Equal(t, -5.0, tracked.MAEPct)
	assert.Equal(t, model.SessionAfterhours, tracked.LastObservedSession)

	h.hours.current = model.SessionRegular
	res = h.pass(t, 95)
	require.Len(t, res.RecentlyClosed, 1)
	got := res.RecentlyClosed[0]
	assert.Equal(t, model.StatusStoppedOut, got.Status)
	assert.Equal(t, 95.0, *got.ClosePrice)
	require.NotNil(t, got.GapInfo)
	assert.True(t, got.GapInfo.SessionOpened)
	assert.Equal(t, model.SessionRegular, got.CloseSession)
}

func TestEvaluate_CryptoIsNeverGated(t *testing.T) {
	h := newHarness(t)
	h.hours.current = model.SessionClosed
	h.market.set("ETH-USD", 2000)
	h.market.atr["ETH-USD"] = 100
	_, err := h.engine.Create(context.Background(), "ETH-USD", model.AssetCrypto, nil)
	require.NoError(t, err)

	h.market.set("ETH-USD", 2160)
	res, err := h.engine.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, res.RecentlyClosed, 1)
	assert.Equal(t, model.StatusTP3Hit, res.RecentlyClosed[0].Status)
	assert.Equal(t, model.SessionRegular, res.RecentlyClosed[0].CloseSession)
}

func TestEvaluate_Monotonicity(t *testing.T) {
	h := newHarness(t)
	h.openACME(t)

	var prev *model.Signal
	for _, p := range []float64{101, 99.5, 102.5, 100, 98.5, 101.7, 100.2} {
		res := h.pass(t, p)
		require.Len(t, res.Active, 1, "closed at %v", p)
		cur := res.Active[0]

		assert.GreaterOrEqual(t, cur.HighestPrice, cur.CurrentPrice)
		assert.LessOrEqual(t, cur.LowestPrice, cur.CurrentPrice)
		assert.GreaterOrEqual(t, cur.MFEPct, 0.0)
		assert.LessOrEqual(t, cur.MAEPct, 0.0)
		if prev != nil {
			assert.GreaterOrEqual(t, cur.HighestPrice, prev.HighestPrice)
			assert.LessOrEqual(t, cur.LowestPrice, prev.LowestPrice)
			assert.GreaterOrEqual(t, cur.MFEPct, prev.MFEPct)
			assert.LessOrEqual(t, cur.MAEPct, prev.MAEPct)
			if prev.TP1Hit {
				assert.True(t, cur.TP1Hit)
			}
		}
		prev = &cur
	}
	assert.Equal(t, 102.5, prev.HighestPrice)
	assert.Equal(t, 98.5, prev.LowestPrice)
	assert.Equal(t, 2.5, prev.MFEPct)
	assert.Equal(t, -1.5, prev.MAEPct)
	assert.True(t, prev.TP1Hit)
}

func TestEvaluate_SkipsUnpricedSignals(t *testing.T) {
	h := newHarness(t)
	s := h.openACME(t)
	h.market.priceErr["ACME"] = errors.New("timeout")

	res, err := h.engine.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, s.ID, res.Warnings[0].SignalID)
	assert.Contains(t, res.Warnings[0].Message, "price unavailable")

	stored, err := h.signals.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastEvaluatedAt)
	assert.Equal(t, 100.0, stored.CurrentPrice)
}

func TestEvaluate_StalePriceIsFlagged(t *testing.T) {
	h := newHarness(t)
	h.openACME(t)
	h.market.stale["ACME"] = true

	res := h.pass(t, 100)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, staleWarning, res.Warnings[0].Message)
	assert.True(t, res.Active[0].PriceStale)
}

func TestCloseSignal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.openACME(t)
	h.pass(t, 101.2)

	closed, err := h.engine.CloseSignal(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusManualClose, closed.Status)
	assert.Equal(t, "manual", closed.CloseReason)
	assert.Equal(t, 101.2, *closed.ClosePrice)
	assert.Equal(t, 1.2, closed.PnLPct)

	_, err = h.engine.CloseSignal(ctx, s.ID, "again")
	assert.ErrorIs(t, err, ErrSignalNotFound)

	_, _, err = h.engine.Evaluate(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSignalNotFound)

	_, err = h.engine.CloseSignal(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrSignalNotFound)

	stored, err := h.signals.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusManualClose, stored.Status)
	assert.Equal(t, "manual", stored.CloseReason)
}

func TestRecordFromScan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.openACME(t)
	h.market.set("NVDA", 900)
	h.market.set("AMD", 150)
	h.market.ctxCalls = 0

	scan := ScanResult{
		MarketRegime: "Choppy / Range",
		Results: []ScanRow{
			{Ticker: "ACME", ScanData: ScanData{Conviction: 90}},
			{Ticker: "NVDA", ScanData: ScanData{Conviction: 81, Heat: "HOT", PillarScores: map[string]float64{"trend": 90}}},
			{Ticker: "AMD", ScanData: ScanData{Conviction: 59}},
			{Ticker: "TSLA", HardFail: true, ScanData: ScanData{Conviction: 95}},
			{Ticker: "GONE", ScanData: ScanData{Conviction: 70}},
		},
	}

	created, warnings, err := h.engine.RecordFromScan(ctx, scan, model.AssetStock)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "NVDA", created[0].Ticker)
	assert.Equal(t, "Choppy / Range", created[0].Regime)
	assert.Equal(t, 90.0, created[0].PillarScores["trend"])
	assert.False(t, created[0].Turbo)

	require.Len(t, warnings, 1)
	assert.Equal(t, "GONE", warnings[0].Ticker)
	assert.Equal(t, 1, h.market.ctxCalls)

	active, err := h.signals.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestRecordFromScan_TickerOpenedMeanwhile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.market.set("NVDA", 900)
	h.market.onPrice = func(symbol string) {
		if symbol != "NVDA" {
			return
		}
		h.market.onPrice = nil
		require.NoError(t, h.signals.Put(ctx, &model.Signal{
			ID:         "other-batch",
			Ticker:     "NVDA",
			AssetClass: model.AssetStock,
			Status:     model.StatusOpen,
			EntryPrice: 899,
			EntryTime:  t0,
		}))
	}

	scan := ScanResult{Results: []ScanRow{{Ticker: "NVDA", ScanData: ScanData{Conviction: 80}}}}
	created, warnings, err := h.engine.RecordFromScan(ctx, scan, model.AssetStock)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, warnings)

	active, err := h.signals.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "other-batch", active[0].ID)
}

// lockWatch records whether the engine lock was free when a close was announced.
type lockWatch struct {
	engine *Engine
	free   []bool
}

func (w *lockWatch) SignalClosed(model.Signal) {
	if w.engine.mu.TryLock() {
		w.engine.mu.Unlock()
		w.free = append(w.free, true)
		return
	}
	w.free = append(w.free, false)
}

func TestCloseListenersRunAfterUnlock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	watch := &lockWatch{}
	h.engine = New(h.market, h.hours, h.signals, h.reports, DefaultConfig(),
		WithClock(h.clock.now),
		WithCloseListener(watch),
	)
	watch.engine = h.engine

	h.openACME(t)
	h.pass(t, 106)
	s := h.openACME(t)
	_, err := h.engine.CloseSignal(ctx, s.ID, "done")
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true}, watch.free)
	assert.Empty(t, h.engine.pending)
}

func TestQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.openACME(t)
	h.pass(t, 104)

	all, err := h.engine.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all.Active)
	require.Len(t, all.Closed, 1)
	assert.Equal(t, 100.0, all.Stats.WinRate)
	assert.Equal(t, model.SessionRegular, all.MarketStatus)

	regimes, err := h.engine.RegimePerformance(ctx)
	require.NoError(t, err)
	require.Len(t, regimes, 1)
	assert.Equal(t, "Trending Bull", regimes[0].Regime)

	require.NoError(t, h.reports.Clear(ctx))
	r, err := h.engine.GetReport(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, r.SignalID)
	reports, err := h.engine.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	_, err = h.engine.GetReport(ctx, "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)

	require.NoError(t, h.engine.ClearAll(ctx))
	all, err = h.engine.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all.Active)
	assert.Empty(t, all.Closed)
	assert.Equal(t, 0.0, all.Stats.ProfitFactor)
	reports, err = h.engine.ListReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

type brokenStore struct {
	*repository.SignalRepository
}

func (brokenStore) GetActive(context.Context) ([]model.Signal, error) {
	return nil, errors.New("disk I/O error")
}

func TestEvaluateAll_StoreFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	engine := New(h.market, h.hours, brokenStore{h.signals}, h.reports, DefaultConfig(), WithClock(h.clock.now))

	_, err := engine.EvaluateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}
