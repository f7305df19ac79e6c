package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=reminder_repository.go -destination=reminder_repository_mock.go -package=domain

// ReminderRepository is the durable reminder store. FindDue selects reminders
// with is_active AND next_run_at IS NOT NULL AND next_run_at <= now.
// CompareAndUpdate applies state as a single conditional update keyed on the
// reminder id and its previous next_run_at, returning false when another
// processor already claimed the reminder.
type ReminderRepository interface {
	Create(ctx context.Context, reminder *Reminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reminder, error)
	ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*Reminder, error)
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error)

	FindDue(ctx context.Context, now time.Time, limit int) ([]*Reminder, error)
	CompareAndUpdate(ctx context.Context, id uuid.UUID, expectedNextRunAt time.Time, state ScheduleState) (bool, error)
}
