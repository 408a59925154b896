package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/model"
	"signaltracker/src/tp_sl"
)

const (
	turboHeat  = "TURBO"
	turboTrend = "TURBO"
	turboTAS   = "—"
)

// Engine runs the signal lifecycle: creation, periodic evaluation against the
// target ladder and the close of each signal with its case report.
//
// Mutating operations are serialized by mu. The store's conditional
// MoveToClosed guards the same transition across processes.
type Engine struct {
	market    MarketData
	sessions  SessionSource
	signals   SignalStore
	reports   ReportStore
	cfg       Config
	listeners []CloseListener

	now   func() time.Time
	newID func() string
	log   *logger.Entry

	mu sync.Mutex
	// pending holds closes made under mu, delivered to listeners on unlock.
	pending []model.Signal
}

type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithLogger(l *logger.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// WithCloseListener registers l to be told about every close.
func WithCloseListener(l CloseListener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

func New(market MarketData, sessions SessionSource, signals SignalStore, reports ReportStore, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		market:   market,
		sessions: sessions,
		signals:  signals,
		reports:  reports,
		cfg:      cfg,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		log:      logger.WithField("component", "tracker"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// unlock releases mu, then tells the listeners about the closes made while
// it was held.
func (e *Engine) unlock() {
	closed := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, s := range closed {
		for _, l := range e.listeners {
			l.SignalClosed(s)
		}
	}
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

// Create opens a new signal on symbol at the current price. scan is nil for
// a turbo launch.
func (e *Engine) Create(ctx context.Context, symbol string, asset model.AssetClass, scan *ScanData) (*model.Signal, error) {
	return e.create(ctx, symbol, asset, scan, nil, false)
}

// errAlreadyTracked is returned by create when unique is set and the ticker
// has an active signal by the time the new one would be stored.
var errAlreadyTracked = errors.New("ticker already tracked")

func (e *Engine) create(ctx context.Context, symbol string, asset model.AssetClass, scan *ScanData, mctx *model.MarketContext, unique bool) (*model.Signal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	if !asset.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAssetClass, asset)
	}
	log := e.log.WithFields(map[string]interface{}{
		"op":     "create",
		"ticker": symbol,
		"asset":  asset,
	})

	quote, err := e.market.GetPrice(ctx, symbol, asset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPrice, symbol, err)
	}
	if !validPrice(quote.Price) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPrice, symbol, quote.Price)
	}
	entry := quote.Price

	var atr *float64
	if v, err := e.market.GetATR14(ctx, symbol, asset); err != nil {
		log.WithError(err).Warn("ATR unavailable, using percentage targets")
	} else {
		atr = &v
	}
	targets := tp_sl.ComputeTargets(entry, atr)

	snapshot, err := e.market.GetIndicatorSnapshot(ctx, symbol, asset)
	if err != nil {
		log.WithError(err).Warn("indicator snapshot unavailable")
		if snapshot == nil {
			snapshot = map[string]any{"error": err.Error()}
		}
	}

	var mc model.MarketContext
	if mctx != nil {
		mc = *mctx
	} else {
		mc = e.marketContext(ctx)
	}

	now := e.now().UTC()
	session := e.sessions.Session(asset, now)

	s := &model.Signal{
		ID:                  e.newID(),
		Ticker:              symbol,
		AssetClass:          asset,
		State:               model.StateActive,
		EntryPrice:          entry,
		EntryTime:           now,
		RiskReward:          targets.RR,
		Regime:              mc.Regime,
		EntryMarketContext:  mc,
		EntrySnapshot:       snapshot,
		EntrySession:        session,
		TargetMethod:        targets.Method,
		ATRAtEntry:          targets.ATR,
		PriceStaleAtEntry:   quote.IsStale,
		PriceDelayWarning:   quote.DelayWarning,
		SL:                  targets.SL,
		TP1:                 targets.TP1,
		TP2:                 targets.TP2,
		TP3:                 targets.TP3,
		Status:              model.StatusOpen,
		CurrentPrice:        entry,
		LastObservedPrice:   entry,
		LastObservedSession: session,
		PriceStale:          quote.IsStale,
		HighestPrice:        entry,
		LowestPrice:         entry,
	}
	applyScan(s, scan)

	e.mu.Lock()
	defer e.mu.Unlock()
	if unique {
		tracked, err := e.tracking(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if tracked {
			return nil, errAlreadyTracked
		}
	}
	if err := e.signals.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("store signal %s: %w", s.Ticker, err)
	}
	log.WithFields(map[string]interface{}{
		"id":     s.ID,
		"entry":  s.EntryPrice,
		"method": s.TargetMethod,
	}).Info("Signal created")
	return s, nil
}

// tracking reports whether ticker has an active signal.
func (e *Engine) tracking(ctx context.Context, ticker string) (bool, error) {
	active, err := e.signals.GetActive(ctx)
	if err != nil {
		return false, fmt.Errorf("load active signals: %w", err)
	}
	for _, s := range active {
		if s.Ticker == ticker {
			return true, nil
		}
	}
	return false, nil
}

func applyScan(s *model.Signal, scan *ScanData) {
	if scan == nil {
		s.Turbo = true
		s.Heat = turboHeat
		s.Trend = turboTrend
		s.TAS = turboTAS
		return
	}
	s.Conviction = scan.Conviction
	s.Heat = scan.Heat
	s.TAS = scan.TAS
	s.Trend = scan.Trend
	s.TANote = scan.TANote
	s.PillarScores = scan.PillarScores
	if scan.Regime != "" {
		s.Regime = scan.Regime
	}
}

// marketContext never fails; an unavailable feed yields regime unknown.
func (e *Engine) marketContext(ctx context.Context) model.MarketContext {
	mc, err := e.market.GetMarketContext(ctx)
	if err != nil {
		e.log.WithError(err).Warn("market context unavailable")
		if mc.Error == "" {
			mc.Error = err.Error()
		}
		mc.Regime = model.RegimeUnknown
	}
	if mc.Regime == "" {
		mc.Regime = model.RegimeUnknown
	}
	if mc.Timestamp.IsZero() {
		mc.Timestamp = e.now().UTC()
	}
	return mc
}

// RecordFromScan opens a signal for every qualifying row of a scan batch:
// not hard-failed, conviction at or above AutoRecordMinConviction and not
// already active. The active check is repeated under mu right before the
// store, so concurrent batches open one signal per ticker. A row that cannot
// be priced is reported as a warning.
func (e *Engine) RecordFromScan(ctx context.Context, scan ScanResult, asset model.AssetClass) ([]model.Signal, []Warning, error) {
	if !asset.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidAssetClass, asset)
	}
	active, err := e.signals.GetActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load active signals: %w", err)
	}
	tracked := make(map[string]bool, len(active))
	for _, s := range active {
		tracked[s.Ticker] = true
	}

	var (
		created  []model.Signal
		warnings []Warning
		mctx     *model.MarketContext
	)
	for _, row := range scan.Results {
		ticker := strings.ToUpper(strings.TrimSpace(row.Ticker))
		if row.HardFail || row.Conviction < e.cfg.AutoRecordMinConviction || tracked[ticker] {
			continue
		}
		if mctx == nil {
			mc := e.marketContext(ctx)
			mctx = &mc
		}

		data := row.ScanData
		if data.Regime == "" {
			data.Regime = scan.MarketRegime
		}
		s, err := e.create(ctx, ticker, asset, &data, mctx, true)
		if errors.Is(err, errAlreadyTracked) {
			tracked[ticker] = true
			continue
		}
		if err != nil {
			if isStoreError(err) {
				return created, warnings, err
			}
			warnings = append(warnings, Warning{Ticker: ticker, Message: err.Error()})
			continue
		}
		tracked[ticker] = true
		created = append(created, *s)
	}

	e.log.WithFields(map[string]interface{}{
		"op":       "record_from_scan",
		"rows":     len(scan.Results),
		"created":  len(created),
		"warnings": len(warnings),
	}).Info("Scan recorded")
	return created, warnings, nil
}

// isStoreError tells failures of the store apart from validation failures,
// which all carry one of the package sentinels.
func isStoreError(err error) bool {
	for _, v := range []error{ErrInvalidPrice, ErrInvalidSymbol, ErrInvalidAssetClass} {
		if errors.Is(err, v) {
			return false
		}
	}
	return true
}
