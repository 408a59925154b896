package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/model"
	"signaltracker/src/tracker"
)

const serviceName = "signaltracker"

type evaluator interface {
	EvaluateAll(ctx context.Context) (*tracker.PassResult, error)
}

type exceptionRecorder interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// Scheduler triggers an evaluation pass on a cron schedule. A failed pass is
// logged, persisted as an exception and otherwise ignored until the next tick.
type Scheduler struct {
	schedule   cron.Schedule
	spec       string
	timeout    time.Duration
	eval       evaluator
	exceptions exceptionRecorder
	log        *logger.Entry
}

func New(cfg Config, eval evaluator, exceptions exceptionRecorder) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	return &Scheduler{
		schedule:   schedule,
		spec:       cfg.Schedule,
		timeout:    cfg.Timeout,
		eval:       eval,
		exceptions: exceptions,
		log:        logger.WithField("component", "scheduler"),
	}, nil
}

// Run blocks until ctx is done. Ticks that fire while a pass is still
// running are skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(s.log)),
		cron.SkipIfStillRunning(cron.PrintfLogger(s.log)),
	))
	c.Schedule(s.schedule, cron.FuncJob(func() {
		_ = s.RunOnce(ctx)
	}))

	s.log.WithField("schedule", s.spec).Info("scheduler started")
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	s.log.Info("scheduler stopped")
	return nil
}

// RunOnce runs a single evaluation pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	passCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		passCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.eval.EvaluateAll(passCtx)
	if err != nil {
		s.log.WithError(err).Error("evaluation pass failed")
		s.recordFailure(ctx, err)
		return err
	}

	s.log.WithFields(map[string]interface{}{
		"active":   len(res.Active),
		"closed":   len(res.RecentlyClosed),
		"warnings": len(res.Warnings),
		"took":     time.Since(start).String(),
	}).Info("loop tick")
	for _, w := range res.Warnings {
		s.log.WithFields(map[string]interface{}{
			"ticker": w.Ticker,
			"id":     w.SignalID,
		}).Warn(w.Message)
	}
	return nil
}

func (s *Scheduler) recordFailure(ctx context.Context, cause error) {
	if s.exceptions == nil {
		return
	}
	exc := &model.Exception{
		Service: serviceName,
		Module:  "scheduler",
		Method:  "EvaluateAll",
		Message: cause.Error(),
		Level:   "error",
	}
	if err := s.exceptions.Create(context.WithoutCancel(ctx), exc); err != nil {
		s.log.WithError(err).Error("failed to persist exception")
	}
}
