package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"signaltracker/src/auth"
	"signaltracker/src/handler"
	"signaltracker/src/model"
	"signaltracker/src/stats"
	"signaltracker/src/tracker"
)

// Tracker is everything the API exposes of the signal engine.
type Tracker interface {
	GetAll(ctx context.Context) (*tracker.Overview, error)
	Create(ctx context.Context, symbol string, asset model.AssetClass, scan *tracker.ScanData) (*model.Signal, error)
	RecordFromScan(ctx context.Context, scan tracker.ScanResult, asset model.AssetClass) ([]model.Signal, []tracker.Warning, error)
	EvaluateAll(ctx context.Context) (*tracker.PassResult, error)
	CloseSignal(ctx context.Context, id, reason string) (*model.Signal, error)
	ClearAll(ctx context.Context) error
	Stats(ctx context.Context) (stats.Summary, error)
	RegimePerformance(ctx context.Context) ([]stats.RegimeStats, error)
	GetReport(ctx context.Context, id string) (*model.CaseReport, error)
	ListReports(ctx context.Context) ([]model.CaseReport, error)
}

// NewRouter builds the API. closes serves the websocket close stream and may
// be nil.
func NewRouter(svc Tracker, closes http.Handler, adminTokenHash string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/signals", func(r chi.Router) {
		r.Get("/", handler.ListSignalsHandler(svc))
		r.Post("/", handler.CreateSignalHandler(svc))
		r.Post("/scan", handler.RecordScanHandler(svc))
		r.Post("/evaluate", handler.EvaluateHandler(svc))
		r.Post("/{id}/close", handler.CloseSignalHandler(svc))
		r.With(auth.RequireAdmin(adminTokenHash)).Delete("/", handler.ClearSignalsHandler(svc))
	})

	r.Get("/stats", handler.StatsHandler(svc))
	r.Get("/stats/regimes", handler.RegimeStatsHandler(svc))
	r.Get("/reports", handler.ListReportsHandler(svc))
	r.Get("/reports/{id}", handler.GetReportHandler(svc))

	if closes != nil {
		r.Handle("/ws/closes", closes)
	}
	return r
}

// StartServer serves h until SIGINT or SIGTERM, then shuts down gracefully.
func StartServer(cfg *Config, h http.Handler) {
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
