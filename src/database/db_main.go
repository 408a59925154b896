package database

import (
	"fmt"

	"signaltracker/src/database/migrations"
	"signaltracker/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MainDB is the read/write connection holding signals, reports and exceptions.
var MainDB *gorm.DB

// InitMainDB opens the configured database and runs migrations.
// This should be called once at application startup.
func InitMainDB() error {
	config := GetConfig()

	db, err := Open(config)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	MainDB = db
	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	if err := Migrate(MainDB); err != nil {
		return err
	}

	logrus.Info("[database] MainDB migrations completed")
	return nil
}

// Migrate brings the schema up to date and applies pending data migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Signal{},
		&model.CaseReport{},
		&model.Exception{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations on MainDB: %w", err)
	}
	return nil
}
