package processor

import (
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

type ResultItem struct {
	ReminderID  uuid.UUID   `json:"reminder_id"`
	EntryID     uuid.UUID   `json:"entry_id"`
	Kind        domain.Kind `json:"kind"`
	FiredAt     time.Time   `json:"fired_at"`
	NextRunAt   *time.Time  `json:"next_run_at,omitempty"`
	Deactivated bool        `json:"deactivated"`
	Skipped     bool        `json:"skipped"`
	SkipReason  string      `json:"skip_reason,omitempty"`
	Delivered   bool        `json:"delivered"`
	Error       string      `json:"error,omitempty"`
}

// Report is the outcome of one ProcessDue invocation. ProcessedCount counts
// reminders whose schedule state was advanced; dispatch failures are included
// in it and surfaced separately through FailedDispatchCount.
type Report struct {
	DueCount            int          `json:"due_count"`
	ProcessedCount      int          `json:"processed_count"`
	SkippedCount        int          `json:"skipped_count"`
	DeactivatedCount    int          `json:"deactivated_count"`
	FailedDispatchCount int          `json:"failed_dispatch_count"`
	Results             []ResultItem `json:"results"`
}
