package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/infra/postgres"
)

const pgForeignKeyViolation = "23503"

const reminderColumns = `r.id, r.entry_id, e.title, r.kind, r.timezone, r.run_at,
	r.frequency, r.day_of_week, r.day_of_month, r.time_of_day_hour, r.time_of_day_minute,
	r.next_run_at, r.last_sent_at, r.is_active, r.created_at, r.updated_at`

type reminderRepository struct {
	db *postgres.DB
}

func NewReminderRepository(db *postgres.DB) domain.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	var todHour, todMinute *int
	if reminder.TimeOfDay != nil {
		todHour = &reminder.TimeOfDay.Hour
		todMinute = &reminder.TimeOfDay.Minute
	}
	var freq *string
	if reminder.Frequency != "" {
		f := reminder.Frequency.String()
		freq = &f
	}

	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO reminders (id, entry_id, kind, timezone, run_at, frequency,
			day_of_week, day_of_month, time_of_day_hour, time_of_day_minute,
			next_run_at, last_sent_at, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		reminder.ID, reminder.EntryID, reminder.Kind.String(), reminder.Timezone,
		reminder.RunAt, freq, reminder.DayOfWeek, reminder.DayOfMonth,
		todHour, todMinute, reminder.NextRunAt, reminder.LastSentAt,
		reminder.IsActive, reminder.CreatedAt, reminder.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.ErrEntryNotFound
		}
		return err
	}
	return nil
}

func (r *reminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders r JOIN journal_entries e ON e.id = r.entry_id
		 WHERE r.id = $1`,
		id,
	)
	reminder, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReminderNotFound
		}
		return nil, err
	}
	return reminder, nil
}

func (r *reminderRepository) ListByEntry(ctx context.Context, entryID uuid.UUID) ([]*domain.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders r JOIN journal_entries e ON e.id = r.entry_id
		 WHERE r.entry_id = $1
		 ORDER BY r.next_run_at ASC NULLS LAST, r.created_at ASC`,
		entryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *reminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	var todHour, todMinute *int
	if reminder.TimeOfDay != nil {
		todHour = &reminder.TimeOfDay.Hour
		todMinute = &reminder.TimeOfDay.Minute
	}
	var freq *string
	if reminder.Frequency != "" {
		f := reminder.Frequency.String()
		freq = &f
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET timezone = $2, run_at = $3, frequency = $4,
			day_of_week = $5, day_of_month = $6, time_of_day_hour = $7,
			time_of_day_minute = $8, next_run_at = $9, last_sent_at = $10,
			is_active = $11, updated_at = $12
		 WHERE id = $1`,
		reminder.ID, reminder.Timezone, reminder.RunAt, freq,
		reminder.DayOfWeek, reminder.DayOfMonth, todHour, todMinute,
		reminder.NextRunAt, reminder.LastSentAt, reminder.IsActive, reminder.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *reminderRepository) DeleteByEntry(ctx context.Context, entryID uuid.UUID) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM reminders WHERE entry_id = $1`, entryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FindDue selects active reminders whose next run instant is at or before
// now, oldest first. The (is_active, next_run_at) index backs this scan.
func (r *reminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders r JOIN journal_entries e ON e.id = r.entry_id
		 WHERE r.is_active AND r.next_run_at IS NOT NULL AND r.next_run_at <= $1
		 ORDER BY r.next_run_at ASC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReminders(rows)
}

// CompareAndUpdate advances a reminder's schedule state only if it is still
// active with the expected next run instant. The single conditional UPDATE is
// the claim that keeps concurrent processor replicas to at-most-one dispatch
// per occurrence.
func (r *reminderRepository) CompareAndUpdate(ctx context.Context, id uuid.UUID, expectedNextRunAt time.Time, state domain.ScheduleState) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET next_run_at = $3, last_sent_at = $4, is_active = $5, updated_at = now()
		 WHERE id = $1 AND is_active AND next_run_at = $2`,
		id, expectedNextRunAt, state.NextRunAt, state.LastSentAt, state.IsActive,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	reminder := &domain.Reminder{}
	var kind string
	var freq *string
	var todHour, todMinute *int

	err := row.Scan(
		&reminder.ID, &reminder.EntryID, &reminder.EntryTitle, &kind, &reminder.Timezone,
		&reminder.RunAt, &freq, &reminder.DayOfWeek, &reminder.DayOfMonth,
		&todHour, &todMinute, &reminder.NextRunAt, &reminder.LastSentAt,
		&reminder.IsActive, &reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reminder.Kind = domain.Kind(kind)
	if freq != nil {
		reminder.Frequency = domain.Frequency(*freq)
	}
	if todHour != nil && todMinute != nil {
		reminder.TimeOfDay = &domain.TimeOfDay{Hour: *todHour, Minute: *todMinute}
	}
	return reminder, nil
}

func scanReminders(rows pgx.Rows) ([]*domain.Reminder, error) {
	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
