package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func intPtr(v int) *int {
	return &v
}

func todPtr(hour, minute int) *domain.TimeOfDay {
	return &domain.TimeOfDay{Hour: hour, Minute: minute}
}

func oneTimeReminder(runAt *time.Time) *domain.Reminder {
	return &domain.Reminder{
		Kind:     domain.KindOneTime,
		Timezone: "UTC",
		RunAt:    runAt,
	}
}

func recurringReminder(freq domain.Frequency, tz string) *domain.Reminder {
	return &domain.Reminder{
		Kind:      domain.KindRecurring,
		Timezone:  tz,
		Frequency: freq,
		TimeOfDay: todPtr(9, 0),
	}
}

func TestNextRun_OneTime(t *testing.T) {
	calc := NewCalculator(nil)
	now := mustParse(t, "2025-12-16T10:00:00Z")

	t.Run("future run time is returned as-is", func(t *testing.T) {
		runAt := mustParse(t, "2025-12-20T15:00:00Z")
		next, err := calc.NextRun(oneTimeReminder(&runAt), now)
		if err != nil {
			t.Fatalf("NextRun() error = %v", err)
		}
		if next == nil || !next.Equal(runAt) {
			t.Errorf("NextRun() = %v, want %v", next, runAt)
		}
	})

	t.Run("past run time yields no occurrence", func(t *testing.T) {
		runAt := mustParse(t, "2025-12-10T15:00:00Z")
		next, err := calc.NextRun(oneTimeReminder(&runAt), now)
		if err != nil {
			t.Fatalf("NextRun() error = %v", err)
		}
		if next != nil {
			t.Errorf("NextRun() = %v, want nil", next)
		}
	})

	t.Run("run time equal to now yields no occurrence", func(t *testing.T) {
		next, err := calc.NextRun(oneTimeReminder(&now), now)
		if err != nil {
			t.Fatalf("NextRun() error = %v", err)
		}
		if next != nil {
			t.Errorf("NextRun() = %v, want nil", next)
		}
	})
}

func TestNextRun_Daily(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name     string
		now      string
		expected string
	}{
		{
			name:     "slot already passed rolls to next day",
			now:      "2025-12-16T10:00:00Z",
			expected: "2025-12-17T09:00:00Z",
		},
		{
			name:     "slot still ahead fires today",
			now:      "2025-12-16T08:00:00Z",
			expected: "2025-12-16T09:00:00Z",
		},
		{
			name:     "slot exactly now rolls to next day",
			now:      "2025-12-16T09:00:00Z",
			expected: "2025-12-17T09:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recurringReminder(domain.FrequencyDaily, "UTC")
			next, err := calc.NextRun(r, mustParse(t, tt.now))
			if err != nil {
				t.Fatalf("NextRun() error = %v", err)
			}
			want := mustParse(t, tt.expected)
			if next == nil || !next.Equal(want) {
				t.Errorf("NextRun() = %v, want %v", next, want)
			}
		})
	}
}

func TestNextRun_Weekly(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name      string
		now       string
		dayOfWeek int
		expected  string
	}{
		{
			// 2025-12-17 is a Wednesday; dayOfWeek 2 is Wednesday (Monday=0).
			name:      "same weekday with passed slot wraps a full week",
			now:       "2025-12-17T10:00:00Z",
			dayOfWeek: 2,
			expected:  "2025-12-24T09:00:00Z",
		},
		{
			name:      "same weekday with future slot fires today",
			now:       "2025-12-17T08:00:00Z",
			dayOfWeek: 2,
			expected:  "2025-12-17T09:00:00Z",
		},
		{
			name:      "target weekday later this week",
			now:       "2025-12-17T10:00:00Z",
			dayOfWeek: 4, // Friday
			expected:  "2025-12-19T09:00:00Z",
		},
		{
			name:      "target weekday earlier in week wraps forward",
			now:       "2025-12-17T10:00:00Z",
			dayOfWeek: 0, // Monday
			expected:  "2025-12-22T09:00:00Z",
		},
		{
			name:      "sunday index wraps to next sunday",
			now:       "2025-12-17T10:00:00Z",
			dayOfWeek: 6, // Sunday
			expected:  "2025-12-21T09:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recurringReminder(domain.FrequencyWeekly, "UTC")
			r.DayOfWeek = intPtr(tt.dayOfWeek)
			next, err := calc.NextRun(r, mustParse(t, tt.now))
			if err != nil {
				t.Fatalf("NextRun() error = %v", err)
			}
			want := mustParse(t, tt.expected)
			if next == nil || !next.Equal(want) {
				t.Errorf("NextRun() = %v, want %v", next, want)
			}
		})
	}
}

func TestNextRun_Monthly(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name       string
		now        string
		dayOfMonth int
		expected   string
	}{
		{
			name:       "this month's date already passed rolls to next year",
			now:        "2025-12-20T10:00:00Z",
			dayOfMonth: 15,
			expected:   "2026-01-15T09:00:00Z",
		},
		{
			name:       "this month's date still ahead",
			now:        "2025-12-10T10:00:00Z",
			dayOfMonth: 15,
			expected:   "2025-12-15T09:00:00Z",
		},
		{
			name:       "day 31 in february clamps to the 28th",
			now:        "2026-02-10T10:00:00Z",
			dayOfMonth: 31,
			expected:   "2026-02-28T09:00:00Z",
		},
		{
			name:       "clamp applies to the rolled-over month",
			now:        "2026-01-31T10:00:00Z",
			dayOfMonth: 31,
			expected:   "2026-02-28T09:00:00Z",
		},
		{
			name:       "clamped day does not shrink later months",
			now:        "2026-02-28T10:00:00Z",
			dayOfMonth: 31,
			expected:   "2026-03-31T09:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recurringReminder(domain.FrequencyMonthly, "UTC")
			r.DayOfMonth = intPtr(tt.dayOfMonth)
			next, err := calc.NextRun(r, mustParse(t, tt.now))
			if err != nil {
				t.Fatalf("NextRun() error = %v", err)
			}
			want := mustParse(t, tt.expected)
			if next == nil || !next.Equal(want) {
				t.Errorf("NextRun() = %v, want %v", next, want)
			}
		})
	}
}

func TestNextRun_TimezoneAcrossDST(t *testing.T) {
	calc := NewCalculator(nil)
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	tests := []struct {
		name     string
		now      string
		expected string
	}{
		{
			// Pacific DST starts 2026-03-08: 09:00 local moves from
			// UTC-8 to UTC-7 without drifting off the local slot.
			name:     "spring forward keeps 09:00 local",
			now:      "2026-03-08T02:00:00Z",
			expected: "2026-03-08T16:00:00Z",
		},
		{
			// DST ends 2026-11-01.
			name:     "fall back keeps 09:00 local",
			now:      "2026-11-01T01:00:00Z",
			expected: "2026-11-01T17:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recurringReminder(domain.FrequencyDaily, "America/Los_Angeles")
			next, err := calc.NextRun(r, mustParse(t, tt.now))
			if err != nil {
				t.Fatalf("NextRun() error = %v", err)
			}
			want := mustParse(t, tt.expected)
			if next == nil || !next.Equal(want) {
				t.Fatalf("NextRun() = %v, want %v", next, want)
			}
			local := next.In(loc)
			if local.Hour() != 9 || local.Minute() != 0 {
				t.Errorf("local wall clock = %02d:%02d, want 09:00", local.Hour(), local.Minute())
			}
		})
	}
}

func TestNextRun_Monotonicity(t *testing.T) {
	calc := NewCalculator(nil)

	reminders := map[string]*domain.Reminder{
		"daily": recurringReminder(domain.FrequencyDaily, "America/Los_Angeles"),
	}
	weekly := recurringReminder(domain.FrequencyWeekly, "UTC")
	weekly.DayOfWeek = intPtr(3)
	reminders["weekly"] = weekly
	monthly := recurringReminder(domain.FrequencyMonthly, "UTC")
	monthly.DayOfMonth = intPtr(31)
	reminders["monthly"] = monthly

	for name, r := range reminders {
		t.Run(name, func(t *testing.T) {
			now := mustParse(t, "2026-02-25T12:00:00Z")
			for i := 0; i < 24; i++ {
				next, err := calc.NextRun(r, now)
				if err != nil {
					t.Fatalf("NextRun() error = %v", err)
				}
				if next == nil {
					t.Fatal("NextRun() = nil, want an occurrence")
				}
				if !next.After(now) {
					t.Fatalf("occurrence %d: NextRun() = %v, not after now %v", i, next, now)
				}
				now = *next
			}
		})
	}
}

func TestNextRun_InvalidSchedules(t *testing.T) {
	calc := NewCalculator(nil)
	now := mustParse(t, "2025-12-16T10:00:00Z")

	tests := []struct {
		name     string
		reminder *domain.Reminder
		field    string
	}{
		{
			name:     "one-time without run_at",
			reminder: oneTimeReminder(nil),
			field:    "run_at",
		},
		{
			name: "recurring without time_of_day",
			reminder: &domain.Reminder{
				Kind:      domain.KindRecurring,
				Frequency: domain.FrequencyDaily,
			},
			field: "time_of_day",
		},
		{
			name: "weekly without day_of_week",
			reminder: &domain.Reminder{
				Kind:      domain.KindRecurring,
				Frequency: domain.FrequencyWeekly,
				TimeOfDay: todPtr(9, 0),
			},
			field: "day_of_week",
		},
		{
			name: "weekly with out-of-range day_of_week",
			reminder: func() *domain.Reminder {
				r := recurringReminder(domain.FrequencyWeekly, "UTC")
				r.DayOfWeek = intPtr(7)
				return r
			}(),
			field: "day_of_week",
		},
		{
			name: "monthly without day_of_month",
			reminder: &domain.Reminder{
				Kind:      domain.KindRecurring,
				Frequency: domain.FrequencyMonthly,
				TimeOfDay: todPtr(9, 0),
			},
			field: "day_of_month",
		},
		{
			name: "monthly with out-of-range day_of_month",
			reminder: func() *domain.Reminder {
				r := recurringReminder(domain.FrequencyMonthly, "UTC")
				r.DayOfMonth = intPtr(32)
				return r
			}(),
			field: "day_of_month",
		},
		{
			name: "recurring with out-of-range time_of_day",
			reminder: func() *domain.Reminder {
				r := recurringReminder(domain.FrequencyDaily, "UTC")
				r.TimeOfDay = todPtr(24, 0)
				return r
			}(),
			field: "time_of_day",
		},
		{
			name: "unknown frequency",
			reminder: &domain.Reminder{
				Kind:      domain.KindRecurring,
				Frequency: domain.Frequency("hourly"),
				TimeOfDay: todPtr(9, 0),
			},
			field: "frequency",
		},
		{
			name: "unknown kind",
			reminder: &domain.Reminder{
				Kind: domain.Kind("cron"),
			},
			field: "kind",
		},
		{
			name: "unresolvable timezone",
			reminder: func() *domain.Reminder {
				r := recurringReminder(domain.FrequencyDaily, "Not/AZone")
				return r
			}(),
			field: "timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := calc.NextRun(tt.reminder, now)
			if err == nil {
				t.Fatalf("NextRun() = %v, want InvalidScheduleError", next)
			}
			var ise *domain.InvalidScheduleError
			if !errors.As(err, &ise) {
				t.Fatalf("NextRun() error = %v, want *domain.InvalidScheduleError", err)
			}
			if ise.Field != tt.field {
				t.Errorf("error field = %q, want %q", ise.Field, tt.field)
			}
		})
	}
}

// fakeLocationResolver serves a fixed timezone table.
type fakeLocationResolver struct {
	zones map[string]*time.Location
}

func (f *fakeLocationResolver) Resolve(name string) (*time.Location, error) {
	loc, ok := f.zones[name]
	if !ok {
		return nil, errors.New("unknown zone: " + name)
	}
	return loc, nil
}

func TestNextRun_InjectedLocationResolver(t *testing.T) {
	resolver := &fakeLocationResolver{
		zones: map[string]*time.Location{
			"Fake/Zone": time.FixedZone("FAKE", -5*60*60),
		},
	}
	calc := NewCalculator(resolver)

	r := recurringReminder(domain.FrequencyDaily, "Fake/Zone")
	now := mustParse(t, "2025-12-16T10:00:00Z") // 05:00 in Fake/Zone

	next, err := calc.NextRun(r, now)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	want := mustParse(t, "2025-12-16T14:00:00Z") // 09:00 -05:00
	if next == nil || !next.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", next, want)
	}

	r.Timezone = "UTC" // not in the fake table
	if _, err := calc.NextRun(r, now); err == nil {
		t.Error("NextRun() with zone outside the injected table should fail")
	}
}
