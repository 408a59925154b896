package schedule

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"signaltracker/src/bootstrap"
	"signaltracker/src/repository"
	"signaltracker/src/scheduler"
)

type Schedule struct {
	Log *logrus.Entry
}

// Start runs evaluation passes on EVALUATE_SCHEDULE until interrupted.
func (s *Schedule) Start() error {
	config := scheduler.GetConfig()
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	engine, err := bootstrap.NewEngine()
	if err != nil {
		s.Log.WithError(err).Error("Failed to build signal engine")
		return err
	}

	sched, err := scheduler.New(config, engine, repository.NewExceptionRepository())
	if err != nil {
		s.Log.WithError(err).Error("Failed to create scheduler")
		return err
	}

	s.Log.WithField("schedule", config.Schedule).Info("Starting evaluation scheduler")
	return sched.Run(ctx)
}
