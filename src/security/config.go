package security

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// AdminTokenHash is the bcrypt hash of the token guarding destructive routes.
	// Empty disables those routes.
	AdminTokenHash string `envconfig:"ADMIN_TOKEN_HASH"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
