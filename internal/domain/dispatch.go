package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DispatchRecord is one fired occurrence of a reminder.
type DispatchRecord struct {
	ReminderID   uuid.UUID
	EntryID      uuid.UUID
	Occurrence   time.Time
	DispatchedAt time.Time
	Delivered    bool
}

// OccurrenceKey identifies a single occurrence of a reminder for ledger lookups.
func OccurrenceKey(reminderID uuid.UUID, occurrence time.Time) string {
	return reminderID.String() + ":" + occurrence.UTC().Format(time.RFC3339)
}

// DispatchLedger records fired occurrences. It is a short-lived guard against
// double dispatch, secondary to the store's compare-and-set claim.
type DispatchLedger interface {
	MarkDispatched(ctx context.Context, record *DispatchRecord) error
	WasDispatched(ctx context.Context, reminderID uuid.UUID, occurrence time.Time) (bool, error)
}
