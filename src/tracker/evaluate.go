package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"signaltracker/src/model"
	"signaltracker/src/stats"
	"signaltracker/src/tp_sl"
	"signaltracker/src/utils"
)

const staleWarning = "Price may be stale (equal to prev close during market hours)"

// PassResult is the outcome of one evaluation pass.
type PassResult struct {
	EvaluatedAt    time.Time      `json:"evaluated_at"`
	MarketStatus   model.Session  `json:"market_status"`
	Active         []model.Signal `json:"active"`
	RecentlyClosed []model.Signal `json:"recently_closed"`
	Warnings       []Warning      `json:"warnings"`
	Stats          stats.Summary  `json:"stats"`
}

// exit is a terminal decision for one signal.
type exit struct {
	status model.Status
	fill   tp_sl.Fill
	reason string
}

// EvaluateAll re-prices every active signal once and closes those whose
// rules fire. A signal that cannot be priced is skipped with a warning; a
// store failure aborts the pass.
func (e *Engine) EvaluateAll(ctx context.Context) (*PassResult, error) {
	e.mu.Lock()
	defer e.unlock()

	now := e.now().UTC()
	active, err := e.signals.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active signals: %w", err)
	}

	res := &PassResult{
		EvaluatedAt:    now,
		MarketStatus:   e.sessions.Session(model.AssetStock, now),
		Active:         []model.Signal{},
		RecentlyClosed: []model.Signal{},
		Warnings:       []Warning{},
	}
	for i := range active {
		s := active[i]
		warnings, closed, err := e.evaluate(ctx, &s, now)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, warnings...)
		if closed {
			res.RecentlyClosed = append(res.RecentlyClosed, s)
		} else {
			res.Active = append(res.Active, s)
		}
	}

	closedSet, err := e.signals.GetClosed(ctx)
	if err != nil {
		return nil, fmt.Errorf("load closed signals: %w", err)
	}
	res.Stats = stats.Compute(closedSet)

	e.log.WithFields(map[string]interface{}{
		"op":       "evaluate_all",
		"active":   len(res.Active),
		"closed":   len(res.RecentlyClosed),
		"warnings": len(res.Warnings),
		"session":  res.MarketStatus,
	}).Info("Evaluation pass finished")
	return res, nil
}

// Evaluate runs one evaluation of a single active signal.
func (e *Engine) Evaluate(ctx context.Context, id string) (*model.Signal, []Warning, error) {
	e.mu.Lock()
	defer e.unlock()

	s, err := e.activeSignal(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	warnings, _, err := e.evaluate(ctx, s, e.now().UTC())
	if err != nil {
		return nil, nil, err
	}
	return s, warnings, nil
}

func (e *Engine) activeSignal(ctx context.Context, id string) (*model.Signal, error) {
	s, err := e.signals.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load signal %s: %w", id, err)
	}
	if s == nil || s.IsClosed() {
		return nil, fmt.Errorf("%w: %s", ErrSignalNotFound, id)
	}
	return s, nil
}

func (e *Engine) evaluate(ctx context.Context, s *model.Signal, now time.Time) ([]Warning, bool, error) {
	log := e.log.WithFields(map[string]interface{}{
		"op":     "evaluate",
		"id":     s.ID,
		"ticker": s.Ticker,
	})
	var warnings []Warning
	warn := func(msg string) {
		warnings = append(warnings, Warning{SignalID: s.ID, Ticker: s.Ticker, Message: msg})
	}

	q, err := e.market.GetPrice(ctx, s.Ticker, s.AssetClass)
	if err != nil {
		log.WithError(err).Warn("price unavailable, signal skipped")
		warn(fmt.Sprintf("price unavailable: %v", err))
		return warnings, false, nil
	}
	if !validPrice(q.Price) {
		log.WithField("price", q.Price).Warn("invalid price, signal skipped")
		warn(fmt.Sprintf("invalid price %v", q.Price))
		return warnings, false, nil
	}
	if q.IsStale {
		warn(staleWarning)
	}

	session := e.sessions.Session(s.AssetClass, now)
	s.PriceStale = q.IsStale
	x := e.advance(s, q.Price, session, now)

	if x == nil {
		if !closable(s.AssetClass, session) {
			log.Debugf("Market closed (%s). Price delayed.", session)
		}
		if err := e.signals.Put(ctx, s); err != nil {
			if errors.Is(err, model.ErrNotActive) {
				warn("signal was closed concurrently")
				return warnings, false, nil
			}
			return nil, false, fmt.Errorf("store signal %s: %w", s.ID, err)
		}
		return warnings, false, nil
	}

	if err := e.close(ctx, s, *x, session, now); err != nil {
		if errors.Is(err, ErrSignalNotFound) {
			warn("signal was closed concurrently")
			return warnings, false, nil
		}
		return nil, false, err
	}
	if err := e.writeReport(ctx, s); err != nil {
		warn(fmt.Sprintf("case report not stored: %v", err))
	}
	return warnings, true, nil
}

// closable reports whether closing rules run in session. Stocks only close
// during the regular session.
func closable(asset model.AssetClass, session model.Session) bool {
	return asset == model.AssetCrypto || session == model.SessionRegular
}

// advance applies one observed price to s and returns the exit it triggers,
// if any. Precedence: SL, TP3, TP2, then timeout. TP1 only sets its flag.
func (e *Engine) advance(s *model.Signal, price float64, session model.Session, now time.Time) *exit {
	prevPrice := s.LastObservedPrice
	if prevPrice <= 0 {
		prevPrice = s.CurrentPrice
	}
	prevSession := s.LastObservedSession
	defer func() {
		s.LastObservedPrice = price
		s.LastObservedSession = session
	}()

	track(s, price, now)
	if !closable(s.AssetClass, session) {
		return nil
	}

	fill := func(cross tp_sl.Cross, name string, level float64) tp_sl.Fill {
		return tp_sl.ResolveFill(tp_sl.FillInput{
			Asset:        s.AssetClass,
			Cross:        cross,
			LevelName:    name,
			Level:        level,
			Entry:        s.EntryPrice,
			PrevPrice:    prevPrice,
			PrevSession:  prevSession,
			Price:        price,
			Session:      session,
			ThresholdPct: e.cfg.GapThresholdPct,
		})
	}

	if tp_sl.Breached(tp_sl.CrossBelow, price, s.SL) {
		f := fill(tp_sl.CrossBelow, "SL", s.SL)
		return &exit{status: model.StatusStoppedOut, fill: f, reason: levelReason("SL", s.SL, f)}
	}

	markTargets(s, price, now)
	switch {
	case tp_sl.Breached(tp_sl.CrossAbove, price, s.TP3):
		f := fill(tp_sl.CrossAbove, "TP3", s.TP3)
		return &exit{status: model.StatusTP3Hit, fill: f, reason: levelReason("TP3", s.TP3, f)}
	case tp_sl.Breached(tp_sl.CrossAbove, price, s.TP2):
		f := fill(tp_sl.CrossAbove, "TP2", s.TP2)
		return &exit{status: model.StatusTP2Hit, fill: f, reason: levelReason("TP2", s.TP2, f)}
	}

	if e.cfg.MaxHoldDays > 0 && s.BarsHeld >= e.cfg.MaxHoldDays {
		return &exit{
			status: model.StatusTimeout,
			fill:   tp_sl.Fill{Price: price},
			reason: fmt.Sprintf("%d-day timeout at $%s", e.cfg.MaxHoldDays, tp_sl.FormatPrice(price)),
		}
	}
	return nil
}

// track refreshes the tracking facet. Extremes and excursions only ever widen.
func track(s *model.Signal, price float64, now time.Time) {
	s.CurrentPrice = price
	s.PnLPct = tp_sl.PctChange(s.EntryPrice, price)

	if s.HighestPrice <= 0 || price > s.HighestPrice {
		s.HighestPrice = price
	}
	if s.LowestPrice <= 0 || price < s.LowestPrice {
		s.LowestPrice = price
	}
	s.MAEPct = math.Min(s.MAEPct, tp_sl.PctChange(s.EntryPrice, s.LowestPrice))
	s.MFEPct = math.Max(s.MFEPct, tp_sl.PctChange(s.EntryPrice, s.HighestPrice))

	if d := utils.DaysHeld(s.EntryTime, now); d > s.BarsHeld {
		s.BarsHeld = d
	}
	at := now
	s.LastEvaluatedAt = &at
}

// markTargets sets the take-profit flags price has reached. Flags never reset.
func markTargets(s *model.Signal, price float64, now time.Time) {
	mark := func(hit *bool, at **time.Time, level float64) {
		if *hit || price < level {
			return
		}
		t := now
		*hit = true
		*at = &t
	}
	mark(&s.TP1Hit, &s.TP1HitTime, s.TP1)
	mark(&s.TP2Hit, &s.TP2HitTime, s.TP2)
	mark(&s.TP3Hit, &s.TP3HitTime, s.TP3)
}

func levelReason(name string, level float64, f tp_sl.Fill) string {
	reason := fmt.Sprintf("%s hit at $%s", name, tp_sl.FormatPrice(level))
	if f.Gap != nil {
		reason += fmt.Sprintf(" (gap fill at $%s, slippage %s%%)", tp_sl.FormatPrice(f.Price), tp_sl.FormatPct(f.SlippagePct))
	}
	return reason
}
