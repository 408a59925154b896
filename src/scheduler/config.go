package scheduler

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Schedule is a cron spec; descriptors such as "@every 5m" are accepted.
	Schedule string        `envconfig:"EVALUATE_SCHEDULE" default:"@every 5m"`
	Timeout  time.Duration `envconfig:"EVALUATE_TIMEOUT" default:"4m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
