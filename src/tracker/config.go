package tracker

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MaxHoldDays closes a signal with TIMEOUT once bars_held reaches it.
	MaxHoldDays int `envconfig:"MAX_HOLD_DAYS" default:"30"`
	// GapThresholdPct is the overshoot past a level, in percent of entry,
	// beyond which a breach is priced at the observed price.
	GapThresholdPct float64 `envconfig:"GAP_THRESHOLD_PCT" default:"0.25"`
	// AutoRecordMinConviction is the lowest scan conviction RecordFromScan accepts.
	AutoRecordMinConviction float64 `envconfig:"AUTO_RECORD_MIN_CONVICTION" default:"60"`
}

func GetConfig() Config {
	var config Config
	err := envconfig.Process("", &config)
	if err != nil {
		panic(err)
	}
	return config
}

// DefaultConfig is the configuration with every default applied.
func DefaultConfig() Config {
	return Config{MaxHoldDays: 30, GapThresholdPct: 0.25, AutoRecordMinConviction: 60}
}
