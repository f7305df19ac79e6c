package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/schedule"
)

func fixedNow(t *testing.T) time.Time {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2025-12-16T10:00:00Z")
	if err != nil {
		t.Fatalf("failed to parse fixed now: %v", err)
	}
	return now
}

func newServiceWithClock(repo domain.ReminderRepository, now time.Time) *Service {
	svc := NewService(repo, schedule.NewCalculator(nil))
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreate_ComputesNextRunBeforeWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := fixedNow(t)
	repo := domain.NewMockReminderRepository(ctrl)

	var persisted *domain.Reminder
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.Reminder) error {
			persisted = r
			return nil
		})

	svc := newServiceWithClock(repo, now)

	tod := &domain.TimeOfDay{Hour: 9, Minute: 0}
	created, err := svc.Create(context.Background(), CreateInput{
		EntryID:   uuid.New(),
		Kind:      domain.KindRecurring,
		Frequency: domain.FrequencyDaily,
		TimeOfDay: tod,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if persisted == nil {
		t.Fatal("reminder was not persisted")
	}
	want := time.Date(2025, 12, 17, 9, 0, 0, 0, time.UTC)
	if created.NextRunAt == nil || !created.NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", created.NextRunAt, want)
	}
	if created.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want default UTC", created.Timezone)
	}
	if !created.IsActive {
		t.Error("created reminder is not active")
	}
}

type countingSweepNotifier struct {
	kicks int
}

func (n *countingSweepNotifier) Notify() {
	n.kicks++
}

func TestScheduleWritesKickSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := fixedNow(t)
	repo := domain.NewMockReminderRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := newServiceWithClock(repo, now)
	sweep := &countingSweepNotifier{}
	svc.SetSweepNotifier(sweep)

	created, err := svc.Create(context.Background(), CreateInput{
		EntryID:   uuid.New(),
		Kind:      domain.KindRecurring,
		Frequency: domain.FrequencyDaily,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sweep.kicks != 1 {
		t.Errorf("sweep kicks after create = %d, want 1", sweep.kicks)
	}

	repo.EXPECT().GetByID(gomock.Any(), created.ID).Return(created, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	newTod := &domain.TimeOfDay{Hour: 18, Minute: 0}
	if _, err := svc.Update(context.Background(), created.ID, UpdateInput{TimeOfDay: newTod}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if sweep.kicks != 2 {
		t.Errorf("sweep kicks after update = %d, want 2", sweep.kicks)
	}
}

func TestCreate_RejectedScheduleDoesNotKickSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domain.NewMockReminderRepository(ctrl)
	svc := newServiceWithClock(repo, fixedNow(t))
	sweep := &countingSweepNotifier{}
	svc.SetSweepNotifier(sweep)

	_, err := svc.Create(context.Background(), CreateInput{
		EntryID:   uuid.New(),
		Kind:      domain.KindRecurring,
		Frequency: domain.FrequencyWeekly,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
	})
	if err == nil {
		t.Fatal("Create() error = nil, want InvalidScheduleError")
	}
	if sweep.kicks != 0 {
		t.Errorf("sweep kicks after rejected create = %d, want 0", sweep.kicks)
	}
}

func TestCreate_RejectsInvalidScheduleWithoutWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domain.NewMockReminderRepository(ctrl)
	// No Create expectation: an invalid schedule must never reach the store.
	svc := newServiceWithClock(repo, fixedNow(t))

	_, err := svc.Create(context.Background(), CreateInput{
		EntryID:   uuid.New(),
		Kind:      domain.KindRecurring,
		Frequency: domain.FrequencyWeekly,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
		// DayOfWeek missing.
	})
	if err == nil {
		t.Fatal("Create() error = nil, want InvalidScheduleError")
	}
	ise, ok := domain.AsInvalidSchedule(err)
	if !ok {
		t.Fatalf("Create() error = %v, want *domain.InvalidScheduleError", err)
	}
	if ise.Field != "day_of_week" {
		t.Errorf("error field = %q, want day_of_week", ise.Field)
	}
}

func TestUpdate_ScheduleChangeRefreshesNextRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := fixedNow(t)
	staleNext := time.Date(2025, 12, 16, 9, 0, 0, 0, time.UTC)
	existing := &domain.Reminder{
		ID:        uuid.New(),
		EntryID:   uuid.New(),
		Kind:      domain.KindRecurring,
		Timezone:  "UTC",
		Frequency: domain.FrequencyDaily,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
		NextRunAt: &staleNext,
		IsActive:  true,
	}

	repo := domain.NewMockReminderRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), existing.ID).Return(existing, nil)

	var persisted *domain.Reminder
	repo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *domain.Reminder) error {
			persisted = r
			return nil
		})

	svc := newServiceWithClock(repo, now)

	newTod := &domain.TimeOfDay{Hour: 18, Minute: 30}
	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		TimeOfDay: newTod,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := time.Date(2025, 12, 16, 18, 30, 0, 0, time.UTC)
	if updated.NextRunAt == nil || !updated.NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", updated.NextRunAt, want)
	}
	if persisted == nil || persisted.NextRunAt == nil || !persisted.NextRunAt.Equal(want) {
		t.Error("refreshed next run instant was not persisted")
	}
}

func TestUpdate_InvalidScheduleRejectedWithoutWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &domain.Reminder{
		ID:        uuid.New(),
		Kind:      domain.KindRecurring,
		Timezone:  "UTC",
		Frequency: domain.FrequencyDaily,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
		IsActive:  true,
	}

	repo := domain.NewMockReminderRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), existing.ID).Return(existing, nil)
	// No Update expectation.

	svc := newServiceWithClock(repo, fixedNow(t))

	badTz := "Not/AZone"
	_, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		Timezone: &badTz,
	})
	if err == nil {
		t.Fatal("Update() error = nil, want InvalidScheduleError")
	}
	if ise, ok := domain.AsInvalidSchedule(err); !ok || ise.Field != "timezone" {
		t.Errorf("Update() error = %v, want timezone InvalidScheduleError", err)
	}
}

func TestUpdate_ReactivationRecomputesNextRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := fixedNow(t)
	existing := &domain.Reminder{
		ID:        uuid.New(),
		Kind:      domain.KindRecurring,
		Timezone:  "UTC",
		Frequency: domain.FrequencyDaily,
		TimeOfDay: &domain.TimeOfDay{Hour: 9, Minute: 0},
		IsActive:  false,
		NextRunAt: nil,
	}

	repo := domain.NewMockReminderRepository(ctrl)
	repo.EXPECT().GetByID(gomock.Any(), existing.ID).Return(existing, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	svc := newServiceWithClock(repo, now)

	active := true
	updated, err := svc.Update(context.Background(), existing.ID, UpdateInput{
		IsActive: &active,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.NextRunAt == nil || !updated.NextRunAt.After(now) {
		t.Errorf("reactivated reminder NextRunAt = %v, want future instant", updated.NextRunAt)
	}
}

func TestDeleteByEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entryID := uuid.New()
	repo := domain.NewMockReminderRepository(ctrl)
	repo.EXPECT().DeleteByEntry(gomock.Any(), entryID).Return(int64(2), nil)

	svc := newServiceWithClock(repo, fixedNow(t))

	deleted, err := svc.DeleteByEntry(context.Background(), entryID)
	if err != nil {
		t.Fatalf("DeleteByEntry() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
}
