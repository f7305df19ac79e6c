package domain

import (
	"context"
	"time"
)

// DispatchRunRecord summarizes one ProcessDue invocation for operator analysis.
type DispatchRunRecord struct {
	RunID            string
	ProcessedAt      time.Time
	DueCount         int
	ProcessedCount   int
	SkippedCount     int
	DeactivatedCount int
	FailedCount      int
	Duration         time.Duration
}

type DispatchResultRecorder interface {
	RecordRun(ctx context.Context, record *DispatchRunRecord) error
	Flush(ctx context.Context) error
	Close() error
}
