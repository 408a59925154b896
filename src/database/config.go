package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string `envconfig:"DATABASE_DRIVER" default:"sqlite"` // "sqlite" or "postgres"
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"file:signals.db?_busy_timeout=5000"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
