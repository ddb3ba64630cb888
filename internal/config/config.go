package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, loaded from the environment.
type Config struct {
	Environment          string `envconfig:"ENVIRONMENT" default:"development"`
	ListenAddr           string `envconfig:"LISTEN_ADDR" default:":8000"`
	DatabasePath         string `envconfig:"DATABASE_PATH" default:"foundit.sqlite3"`
	JWTSecret            string `envconfig:"JWT_SECRET"`
	ReadHeaderTimeoutSec uint   `envconfig:"READ_HEADER_TIMEOUT_SEC" default:"10"`
	IdleTimeoutSec       uint   `envconfig:"IDLE_TIMEOUT_SEC" default:"120"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	c := new(Config)
	if err := envconfig.Process("FOUNDIT", c); err != nil {
		return nil, fmt.Errorf("processing environment config: %w", err)
	}
	return c, nil
}
