package bootstrap

import (
	"signaltracker/src/connectors"
	"signaltracker/src/database"
	"signaltracker/src/repository"
	"signaltracker/src/risk"
	"signaltracker/src/tracker"
)

// NewEngine opens the main database and builds the engine on the production
// market provider and repositories.
func NewEngine(opts ...tracker.Option) (*tracker.Engine, error) {
	if database.MainDB == nil {
		if err := database.InitMainDB(); err != nil {
			return nil, err
		}
	}

	sessions := risk.NewSessionClock()
	market := connectors.NewMarketProvider(connectors.GetConfig(), sessions)

	return tracker.New(
		market,
		sessions,
		repository.NewSignalRepository(),
		repository.NewReportRepository(),
		tracker.GetConfig(),
		opts...,
	), nil
}
