package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=notifier.go -destination=notifier_mock.go -package=domain

// Notification is the payload handed to the Notifier when a reminder fires.
type Notification struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	EntryID    uuid.UUID `json:"entry_id"`
	EntryTitle string    `json:"entry_title"`
	Kind       Kind      `json:"kind"`
	FiredAt    time.Time `json:"fired_at"`
}

// Notifier delivers a fired reminder. Delivery is fire-and-forget for the
// processor: a failed Send is logged and counted but never blocks rescheduling.
// Retries, if any, belong to the implementation.
type Notifier interface {
	Send(ctx context.Context, notification *Notification) error
}
