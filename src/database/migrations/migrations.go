package migrations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DataMigration tracks executed data migrations.
// Table name is fixed to avoid collisions with other models.
type DataMigration struct {
	ID        string    `gorm:"primaryKey;size:200;column:id"`
	AppliedAt time.Time `gorm:"not null;column:applied_at"`
}

func (DataMigration) TableName() string { return "data_migrations" }

// RunOnce runs fn only if migrationID was not executed before.
// The migration is recorded in the same transaction as its work.
func RunOnce(db *gorm.DB, migrationID string, fn func(*gorm.DB) error) error {
	if db == nil {
		return nil
	}
	if migrationID == "" {
		return fmt.Errorf("migration id is empty")
	}
	if fn == nil {
		return fmt.Errorf("migration %q has nil fn", migrationID)
	}

	if err := db.AutoMigrate(&DataMigration{}); err != nil {
		return fmt.Errorf("ensure data migrations table: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var m DataMigration
		err := tx.First(&m, "id = ?", migrationID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check migration %q: %w", migrationID, err)
		}

		if err := fn(tx); err != nil {
			return fmt.Errorf("run migration %q: %w", migrationID, err)
		}

		rec := DataMigration{ID: migrationID, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("record migration %q: %w", migrationID, err)
		}
		return nil
	})
}

// Run executes all data migrations that go beyond schema auto-migrations.
// Append new migrations at the bottom with a stable unique id.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	if err := RunOnce(db, "00001_backfill_last_observed_price", backfillLastObservedPrice); err != nil {
		return err
	}

	if err := RunOnce(db, "00002_backfill_target_method", backfillTargetMethod); err != nil {
		return err
	}

	return nil
}

// backfillLastObservedPrice seeds the gap detector's previous observation for
// rows written before the column existed.
func backfillLastObservedPrice(tx *gorm.DB) error {
	return tx.Exec(
		"UPDATE signals SET last_observed_price = CASE WHEN current_price > 0 THEN current_price ELSE entry_price END " +
			"WHERE last_observed_price IS NULL OR last_observed_price = 0",
	).Error
}

// backfillTargetMethod labels legacy rows by whether an ATR was recorded.
func backfillTargetMethod(tx *gorm.DB) error {
	if err := tx.Exec(
		"UPDATE signals SET target_method = 'atr' WHERE (target_method IS NULL OR target_method = '') AND atr_at_entry IS NOT NULL",
	).Error; err != nil {
		return err
	}
	return tx.Exec(
		"UPDATE signals SET target_method = 'pct_fallback' WHERE target_method IS NULL OR target_method = ''",
	).Error
}
