package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signaltracker/src/database"
	"signaltracker/src/model"
)

// ErrNotActive is returned when a write targets a closed or missing signal.
var ErrNotActive = model.ErrNotActive

// SignalRepository persists signal records. The active and closed sets are
// the two values of the state column.
type SignalRepository struct {
	db *gorm.DB
}

// NewSignalRepository creates a new repository instance using the main read/write database.
func NewSignalRepository() *SignalRepository {
	logger.WithField("component", "SignalRepository").
		Info("Creating new SignalRepository with MainDB")

	return &SignalRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SignalRepository) WithDB(db *gorm.DB) *SignalRepository {
	logger.WithField("component", "SignalRepository").
		Debug("Creating SignalRepository with custom DB instance")

	return &SignalRepository{db: db}
}

// GetActive returns the active set, oldest entry first.
func (r *SignalRepository) GetActive(ctx context.Context) ([]model.Signal, error) {
	return r.listByState(ctx, model.StateActive, "entry_time ASC")
}

// GetClosed returns the closed set, most recently closed first.
func (r *SignalRepository) GetClosed(ctx context.Context) ([]model.Signal, error) {
	return r.listByState(ctx, model.StateClosed, "closed_at DESC")
}

func (r *SignalRepository) listByState(ctx context.Context, state, order string) ([]model.Signal, error) {
	fields := map[string]interface{}{
		"repo":  "SignalRepository",
		"op":    "listByState",
		"state": state,
	}
	logger.WithFields(fields).Debug("Listing signals")

	var out []model.Signal
	if err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order(order).
		Find(&out).Error; err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to list signals")
		return nil, err
	}

	logger.WithFields(fields).WithField("count", len(out)).Debug("Signals listed")
	return out, nil
}

// Get returns the signal with id, or (nil, nil) when it does not exist.
func (r *SignalRepository) Get(ctx context.Context, id string) (*model.Signal, error) {
	var s model.Signal
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "SignalRepository",
				"op":   "Get",
				"id":   id,
			}).Debug("Signal not found")
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo": "SignalRepository",
			"op":   "Get",
			"id":   id,
		}).WithError(err).Error("Failed to load signal")
		return nil, err
	}
	return &s, nil
}

// Put inserts a new active signal or overwrites the tracking facet of an
// existing one. Closed records are frozen and return ErrNotActive.
func (r *SignalRepository) Put(ctx context.Context, s *model.Signal) error {
	fields := map[string]interface{}{
		"repo":   "SignalRepository",
		"op":     "Put",
		"id":     s.ID,
		"ticker": s.Ticker,
		"status": s.Status,
	}
	logger.WithFields(fields).Debug("Saving signal")

	if s.State == "" {
		s.State = model.StateActive
	}
	if s.State != model.StateActive {
		return fmt.Errorf("put %s: %w", s.ID, ErrNotActive)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Signal
		err := tx.Select("id", "state").First(&existing, "id = ?", s.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(s).Error
		case err != nil:
			return err
		case existing.State != model.StateActive:
			return fmt.Errorf("put %s: %w", s.ID, ErrNotActive)
		default:
			return tx.Save(s).Error
		}
	})
	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to save signal")
		return err
	}

	logger.WithFields(fields).Debug("Signal saved")
	return nil
}

// MoveToClosed writes the closed record and moves it out of the active set in
// one conditional update. A signal that is no longer active is left untouched
// and ErrNotActive is returned, so the second of two racing closers loses.
func (r *SignalRepository) MoveToClosed(ctx context.Context, s *model.Signal) error {
	fields := map[string]interface{}{
		"repo":   "SignalRepository",
		"op":     "MoveToClosed",
		"id":     s.ID,
		"ticker": s.Ticker,
		"status": s.Status,
	}
	logger.WithFields(fields).Debug("Moving signal to closed set")

	s.State = model.StateClosed
	res := r.db.WithContext(ctx).
		Model(&model.Signal{}).
		Where("id = ? AND state = ?", s.ID, model.StateActive).
		Select("*").
		Omit("id", "created_at").
		Updates(s)
	if res.Error != nil {
		s.State = model.StateActive
		logger.WithFields(fields).WithError(res.Error).Error("Failed to close signal")
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.State = model.StateActive
		logger.WithFields(fields).Warn("Signal was not active, nothing closed")
		return fmt.Errorf("close %s: %w", s.ID, ErrNotActive)
	}

	logger.WithFields(fields).Info("Signal moved to closed set")
	return nil
}

// Clear deletes every signal in both sets.
func (r *SignalRepository) Clear(ctx context.Context) error {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Signal{})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "SignalRepository",
			"op":   "Clear",
		}).WithError(res.Error).Error("Failed to clear signals")
		return res.Error
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "SignalRepository",
		"op":      "Clear",
		"deleted": res.RowsAffected,
	}).Warn("All signals deleted")
	return nil
}
