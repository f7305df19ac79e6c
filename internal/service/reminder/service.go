package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/schedule"
)

// CreateInput carries the schedule definition of a new reminder.
type CreateInput struct {
	EntryID    uuid.UUID
	Kind       domain.Kind
	Timezone   string
	RunAt      *time.Time
	Frequency  domain.Frequency
	DayOfWeek  *int
	DayOfMonth *int
	TimeOfDay  *domain.TimeOfDay
}

// UpdateInput mutates an existing reminder. Nil fields are left untouched;
// any change to a schedule field triggers a recompute of the next run instant
// before the write completes.
type UpdateInput struct {
	Timezone   *string
	RunAt      *time.Time
	Frequency  *domain.Frequency
	DayOfWeek  *int
	DayOfMonth *int
	TimeOfDay  *domain.TimeOfDay
	IsActive   *bool
}

// SweepNotifier kicks the background sweep so a freshly written schedule is
// picked up before the next interval tick.
type SweepNotifier interface {
	Notify()
}

// Service is the administrative surface over reminders. Every write that can
// change the schedule re-invokes the calculator and persists the refreshed
// next run instant in the same operation; a reminder is never stored with a
// stale one.
type Service struct {
	reminderRepo domain.ReminderRepository
	calculator   *schedule.Calculator
	sweep        SweepNotifier
	now          func() time.Time
}

func NewService(reminderRepo domain.ReminderRepository, calculator *schedule.Calculator) *Service {
	return &Service{
		reminderRepo: reminderRepo,
		calculator:   calculator,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetSweepNotifier attaches the sweep trigger. Nil (the default) means
// schedule writes wait for the next external or interval trigger.
func (s *Service) SetSweepNotifier(sweep SweepNotifier) {
	s.sweep = sweep
}

func (s *Service) kickSweep() {
	if s.sweep != nil {
		s.sweep.Notify()
	}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Reminder, error) {
	now := s.now()

	reminder := &domain.Reminder{
		ID:         uuid.New(),
		EntryID:    input.EntryID,
		Kind:       input.Kind,
		Timezone:   input.Timezone,
		RunAt:      input.RunAt,
		Frequency:  input.Frequency,
		DayOfWeek:  input.DayOfWeek,
		DayOfMonth: input.DayOfMonth,
		TimeOfDay:  input.TimeOfDay,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if reminder.Timezone == "" {
		reminder.Timezone = domain.DefaultTimezone
	}

	next, err := s.calculator.NextRun(reminder, now)
	if err != nil {
		return nil, err
	}
	reminder.NextRunAt = next

	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("entry_id", reminder.EntryID.String()),
		slog.String("kind", reminder.Kind.String()),
		slog.Any("next_run_at", reminder.NextRunAt),
	)

	s.kickSweep()

	return reminder, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	return s.reminderRepo.GetByID(ctx, id)
}

func (s *Service) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Reminder, error) {
	return s.reminderRepo.ListByEntry(ctx, entryID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scheduleChanged := applyUpdate(reminder, input)

	now := s.now()
	if scheduleChanged || (input.IsActive != nil && *input.IsActive) {
		next, err := s.calculator.NextRun(reminder, now)
		if err != nil {
			return nil, err
		}
		reminder.NextRunAt = next
	}
	reminder.UpdatedAt = now

	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	slog.InfoContext(ctx, "reminder updated",
		slog.String("reminder_id", reminder.ID.String()),
		slog.Bool("schedule_changed", scheduleChanged),
		slog.Any("next_run_at", reminder.NextRunAt),
	)

	s.kickSweep()

	return reminder, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.reminderRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "reminder deleted", slog.String("reminder_id", id.String()))
	return nil
}

// DeleteByEntry removes all reminders of a journal entry. Called by the entry
// lifecycle when an entry is destroyed.
func (s *Service) DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	deleted, err := s.reminderRepo.DeleteByEntry(ctx, entryID)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "entry reminders deleted",
		slog.String("entry_id", entryID.String()),
		slog.Int64("deleted_count", deleted),
	)
	return deleted, nil
}

func applyUpdate(reminder *domain.Reminder, input UpdateInput) bool {
	changed := false
	if input.Timezone != nil && *input.Timezone != reminder.Timezone {
		reminder.Timezone = *input.Timezone
		changed = true
	}
	if input.RunAt != nil {
		reminder.RunAt = input.RunAt
		changed = true
	}
	if input.Frequency != nil && *input.Frequency != reminder.Frequency {
		reminder.Frequency = *input.Frequency
		changed = true
	}
	if input.DayOfWeek != nil {
		reminder.DayOfWeek = input.DayOfWeek
		changed = true
	}
	if input.DayOfMonth != nil {
		reminder.DayOfMonth = input.DayOfMonth
		changed = true
	}
	if input.TimeOfDay != nil {
		reminder.TimeOfDay = input.TimeOfDay
		changed = true
	}
	if input.IsActive != nil {
		reminder.IsActive = *input.IsActive
	}
	return changed
}
