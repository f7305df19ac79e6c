package config

import (
	"os"
)

const (
	databaseURIEnv = "DATABASE_URI"
)

type PostgresConfig struct {
	URI string
}

func LoadPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		URI: os.Getenv(databaseURIEnv),
	}
}

func (c *PostgresConfig) Validate() error {
	if c == nil || c.URI == "" {
		return ErrDatabaseURIMissing
	}
	return nil
}
