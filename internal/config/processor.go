package config

import (
	"os"
	"strconv"
	"time"
)

const (
	processIntervalMinutesEnv = "PROCESS_INTERVAL_MINUTES"
	dueBatchLimitEnv          = "DUE_BATCH_LIMIT"

	defaultDueBatchLimit = 100
)

// ProcessorConfig controls the internal sweep loop. An interval of zero
// disables the ticker; the process endpoint is always available.
type ProcessorConfig struct {
	Interval      time.Duration
	DueBatchLimit int
}

func LoadProcessorConfig() (*ProcessorConfig, error) {
	interval := time.Duration(0)
	if raw := os.Getenv(processIntervalMinutesEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, ErrInvalidProcessInterval
		}
		interval = time.Duration(parsed) * time.Minute
	}

	batchLimit := defaultDueBatchLimit
	if v := os.Getenv(dueBatchLimitEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			batchLimit = parsed
		}
	}

	return &ProcessorConfig{
		Interval:      interval,
		DueBatchLimit: batchLimit,
	}, nil
}
