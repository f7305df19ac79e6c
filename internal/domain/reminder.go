package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes reminders that fire once from reminders that repeat.
type Kind string

const (
	KindOneTime   Kind = "one_time"
	KindRecurring Kind = "recurring"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	return k == KindOneTime || k == KindRecurring
}

// Frequency is the repeat cadence of a recurring reminder.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) String() string {
	return string(f)
}

func (f Frequency) IsValid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// TimeOfDay is a wall-clock time interpreted in the reminder's timezone.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) IsValid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

const DefaultTimezone = "UTC"

// Reminder is attached to exactly one journal entry and is destroyed with it.
// Wall-clock schedule fields (TimeOfDay, DayOfWeek, DayOfMonth) are interpreted
// in Timezone; NextRunAt, LastSentAt and RunAt are absolute UTC instants.
type Reminder struct {
	ID      uuid.UUID
	EntryID uuid.UUID

	// EntryTitle is denormalized from the owning journal entry on reads.
	// It is never written through this service.
	EntryTitle string

	Kind     Kind
	Timezone string

	// One-time schedule.
	RunAt *time.Time

	// Recurring schedule. DayOfWeek uses Monday=0 .. Sunday=6.
	Frequency  Frequency
	DayOfWeek  *int
	DayOfMonth *int
	TimeOfDay  *TimeOfDay

	NextRunAt  *time.Time
	LastSentAt *time.Time
	IsActive   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Reminder) IsRecurring() bool {
	return r.Kind == KindRecurring
}

// Location name to interpret the wall-clock fields in, defaulting to UTC.
func (r *Reminder) LocationName() string {
	if r.Timezone == "" {
		return DefaultTimezone
	}
	return r.Timezone
}

// ScheduleState is the post-fire state of a reminder, applied through
// ReminderRepository.CompareAndUpdate.
type ScheduleState struct {
	NextRunAt  *time.Time
	LastSentAt *time.Time
	IsActive   bool
}
