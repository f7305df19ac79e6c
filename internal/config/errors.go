package config

import "errors"

var (
	ErrDatabaseURIMissing     = errors.New("DATABASE_URI is required")
	ErrRedisAddrMissing       = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB         = errors.New("REDIS_DB must be a valid integer")
	ErrInvalidProcessInterval = errors.New("PROCESS_INTERVAL_MINUTES must be a non-negative integer")
)
