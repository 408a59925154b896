package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"signaltracker/src/model"
	"signaltracker/src/report"
	"signaltracker/src/tp_sl"
	"signaltracker/src/utils"
)

const defaultCloseReason = "manual"

// CloseSignal closes an active signal by hand at its last known price.
func (e *Engine) CloseSignal(ctx context.Context, id, reason string) (*model.Signal, error) {
	e.mu.Lock()
	defer e.unlock()

	s, err := e.activeSignal(ctx, id)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	fill := s.CurrentPrice
	if !validPrice(fill) {
		fill = s.EntryPrice
	}
	if d := utils.DaysHeld(s.EntryTime, now); d > s.BarsHeld {
		s.BarsHeld = d
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCloseReason
	}

	x := exit{status: model.StatusManualClose, fill: tp_sl.Fill{Price: fill}, reason: reason}
	if err := e.close(ctx, s, x, e.sessions.Session(s.AssetClass, now), now); err != nil {
		return nil, err
	}
	if err := e.writeReport(ctx, s); err != nil {
		e.log.WithError(err).WithField("id", s.ID).Error("case report not stored")
	}
	return s, nil
}

// close writes the close facet and moves s to the closed set. It returns
// ErrSignalNotFound when another writer closed s first. Must hold mu.
func (e *Engine) close(ctx context.Context, s *model.Signal, x exit, session model.Session, now time.Time) error {
	fill := x.fill.Price
	mc := e.marketContext(ctx)
	closedAt := now
	orig := *s

	s.Status = x.status
	s.ClosePrice = &fill
	s.PnLPct = tp_sl.PctChange(s.EntryPrice, fill)
	s.SlippagePct = x.fill.SlippagePct
	s.GapInfo = x.fill.Gap
	s.ClosedAt = &closedAt
	s.CloseReason = x.reason
	s.CloseSession = session
	s.CloseMarketContext = &mc
	s.CloseSnapshot = &model.CloseSnapshot{
		Price:        fill,
		PnLPct:       s.PnLPct,
		MAEPct:       s.MAEPct,
		MFEPct:       s.MFEPct,
		BarsHeld:     s.BarsHeld,
		HighestPrice: s.HighestPrice,
		LowestPrice:  s.LowestPrice,
		SlippagePct:  s.SlippagePct,
	}

	if err := e.signals.MoveToClosed(ctx, s); err != nil {
		*s = orig
		if errors.Is(err, model.ErrNotActive) {
			return fmt.Errorf("%w: %s", ErrSignalNotFound, s.ID)
		}
		return fmt.Errorf("close signal %s: %w", s.ID, err)
	}

	e.log.WithFields(map[string]interface{}{
		"op":       "close",
		"id":       s.ID,
		"ticker":   s.Ticker,
		"status":   s.Status,
		"fill":     fill,
		"pnl":      s.PnLPct,
		"slippage": s.SlippagePct,
	}).Info(s.CloseReason)

	e.pending = append(e.pending, *s)
	return nil
}

func (e *Engine) writeReport(ctx context.Context, s *model.Signal) error {
	r := report.Generate(*s)
	return e.reports.PutReport(ctx, &r)
}
