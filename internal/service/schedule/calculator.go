package schedule

import (
	"time"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

// LocationResolver maps an IANA timezone name to a *time.Location. The
// timezone database is injected so the calculator can be exercised against
// fixed fake tables in tests.
type LocationResolver interface {
	Resolve(name string) (*time.Location, error)
}

type stdLocationResolver struct{}

func (stdLocationResolver) Resolve(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

// Calculator computes the next fire instant of a reminder. It is pure: the
// reference instant is always supplied by the caller and no clock or store is
// touched, so it is safe to share across goroutines.
type Calculator struct {
	locations LocationResolver
}

// NewCalculator creates a Calculator. A nil resolver falls back to the
// system timezone database.
func NewCalculator(locations LocationResolver) *Calculator {
	if locations == nil {
		locations = stdLocationResolver{}
	}
	return &Calculator{
		locations: locations,
	}
}

// NextRun returns the next UTC instant strictly after now at which the
// reminder must fire, or nil when no further occurrence exists (a one-time
// reminder whose run time has passed). Malformed schedules fail with a
// *domain.InvalidScheduleError naming the missing or out-of-range field.
func (c *Calculator) NextRun(r *domain.Reminder, now time.Time) (*time.Time, error) {
	loc, err := c.locations.Resolve(r.LocationName())
	if err != nil {
		return nil, &domain.InvalidScheduleError{Field: "timezone", Reason: "is not a valid IANA timezone"}
	}

	switch r.Kind {
	case domain.KindOneTime:
		return nextOneTime(r, now)
	case domain.KindRecurring:
		return c.nextRecurring(r, now, loc)
	default:
		return nil, &domain.InvalidScheduleError{Field: "kind", Reason: "must be one_time or recurring"}
	}
}

func nextOneTime(r *domain.Reminder, now time.Time) (*time.Time, error) {
	if r.RunAt == nil {
		return nil, &domain.InvalidScheduleError{Field: "run_at", Reason: "is required for one-time reminders"}
	}
	if !r.RunAt.After(now) {
		return nil, nil
	}
	next := r.RunAt.UTC()
	return &next, nil
}

func (c *Calculator) nextRecurring(r *domain.Reminder, now time.Time, loc *time.Location) (*time.Time, error) {
	if r.TimeOfDay == nil {
		return nil, &domain.InvalidScheduleError{Field: "time_of_day", Reason: "is required for recurring reminders"}
	}
	if !r.TimeOfDay.IsValid() {
		return nil, &domain.InvalidScheduleError{Field: "time_of_day", Reason: "must be a valid wall-clock time"}
	}

	localNow := now.In(loc)

	var candidate time.Time
	switch r.Frequency {
	case domain.FrequencyDaily:
		candidate = nextDaily(localNow, now, *r.TimeOfDay, loc)
	case domain.FrequencyWeekly:
		if r.DayOfWeek == nil {
			return nil, &domain.InvalidScheduleError{Field: "day_of_week", Reason: "is required for weekly reminders"}
		}
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return nil, &domain.InvalidScheduleError{Field: "day_of_week", Reason: "must be between 0 (Monday) and 6 (Sunday)"}
		}
		candidate = nextWeekly(localNow, now, *r.DayOfWeek, *r.TimeOfDay, loc)
	case domain.FrequencyMonthly:
		if r.DayOfMonth == nil {
			return nil, &domain.InvalidScheduleError{Field: "day_of_month", Reason: "is required for monthly reminders"}
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return nil, &domain.InvalidScheduleError{Field: "day_of_month", Reason: "must be between 1 and 31"}
		}
		candidate = nextMonthly(localNow, now, *r.DayOfMonth, *r.TimeOfDay, loc)
	default:
		return nil, &domain.InvalidScheduleError{Field: "frequency", Reason: "must be daily, weekly or monthly"}
	}

	next := candidate.UTC()
	return &next, nil
}

// nextDaily picks today's slot in the reminder's zone when it is still ahead,
// otherwise the same wall-clock time tomorrow. Construction goes through
// time.Date in loc so DST gaps and overlaps resolve by the zone's own rules
// instead of naive 24h arithmetic.
func nextDaily(localNow time.Time, now time.Time, tod domain.TimeOfDay, loc *time.Location) time.Time {
	y, m, d := localNow.Date()
	candidate := time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc)
	if candidate.After(now) {
		return candidate
	}
	return time.Date(y, m, d+1, tod.Hour, tod.Minute, 0, 0, loc)
}

// nextWeekly finds the next local date whose weekday matches dayOfWeek
// (Monday=0). A matching day whose slot already passed wraps a full week.
func nextWeekly(localNow time.Time, now time.Time, dayOfWeek int, tod domain.TimeOfDay, loc *time.Location) time.Time {
	// time.Weekday counts Sunday=0; reminders count Monday=0.
	today := (int(localNow.Weekday()) + 6) % 7
	days := (dayOfWeek - today + 7) % 7

	y, m, d := localNow.Date()
	candidate := time.Date(y, m, d+days, tod.Hour, tod.Minute, 0, 0, loc)
	if days == 0 && !candidate.After(now) {
		candidate = time.Date(y, m, d+7, tod.Hour, tod.Minute, 0, 0, loc)
	}
	return candidate
}

// nextMonthly clamps dayOfMonth to the target month's length rather than
// overflowing into the following month. December advances to January of the
// next year via time.Date's month normalization.
func nextMonthly(localNow time.Time, now time.Time, dayOfMonth int, tod domain.TimeOfDay, loc *time.Location) time.Time {
	y, m, _ := localNow.Date()
	candidate := time.Date(y, m, clampDay(dayOfMonth, y, m), tod.Hour, tod.Minute, 0, 0, loc)
	if candidate.After(now) {
		return candidate
	}
	return time.Date(y, m+1, clampDay(dayOfMonth, y, m+1), tod.Hour, tod.Minute, 0, 0, loc)
}

func clampDay(day int, year int, month time.Month) int {
	last := daysInMonth(year, month)
	if day > last {
		return last
	}
	return day
}

// daysInMonth relies on day-zero normalization: the zeroth day of the next
// month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
