package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/metrics"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/observability/tracing"
	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/schedule"
)

const defaultBatchLimit = 100

// Service drives the scan-claim-dispatch cycle over due reminders. Multiple
// replicas may invoke ProcessDue concurrently: each reminder is claimed with a
// conditional update before dispatch, so a losing replica skips it.
type Service struct {
	reminderRepo     domain.ReminderRepository
	notifier         domain.Notifier
	calculator       *schedule.Calculator
	dispatchLedger   domain.DispatchLedger
	resultRecorder   domain.DispatchResultRecorder
	processorMetrics *metrics.ProcessorMetrics
	batchLimit       int
}

func NewService(
	reminderRepo domain.ReminderRepository,
	notifier domain.Notifier,
	calculator *schedule.Calculator,
	dispatchLedger domain.DispatchLedger,
	resultRecorder domain.DispatchResultRecorder,
	processorMetrics *metrics.ProcessorMetrics,
	batchLimit int,
) *Service {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &Service{
		reminderRepo:     reminderRepo,
		notifier:         notifier,
		calculator:       calculator,
		dispatchLedger:   dispatchLedger,
		resultRecorder:   resultRecorder,
		processorMetrics: processorMetrics,
		batchLimit:       batchLimit,
	}
}

// ProcessDue fires every active reminder whose next run instant is at or
// before now and advances its schedule. Re-invoking with the same now after a
// successful run finds nothing due. A store failure aborts the batch and is
// returned with the partial report; already-claimed reminders stay claimed
// (each claim is independently atomic) and the rest are retried on the next
// trigger invocation.
func (s *Service) ProcessDue(ctx context.Context, now time.Time) (*Report, error) {
	started := time.Now()
	runID := uuid.New()

	ctx, span := tracing.StartProcessRunSpan(ctx, runID.String(), now)
	defer span.End()

	due, err := s.reminderRepo.FindDue(ctx, now, s.batchLimit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query due reminders",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}

	slog.DebugContext(ctx, "fetched due reminders",
		slog.String("run_id", runID.String()),
		slog.Time("now", now),
		slog.Int("due_count", len(due)),
	)

	report := &Report{
		DueCount: len(due),
		Results:  make([]ResultItem, 0, len(due)),
	}

	for _, reminder := range due {
		item, err := s.processOne(ctx, reminder, now)
		report.Results = append(report.Results, *item)
		s.tally(ctx, report, item)
		if err != nil {
			s.finishRun(ctx, runID, now, started, report)
			return report, fmt.Errorf("failed to process reminder %s: %w", reminder.ID, err)
		}
	}

	s.finishRun(ctx, runID, now, started, report)

	slog.InfoContext(ctx, "processed due reminders",
		slog.String("run_id", runID.String()),
		slog.Int("due_count", report.DueCount),
		slog.Int("processed_count", report.ProcessedCount),
		slog.Int("skipped_count", report.SkippedCount),
		slog.Int("deactivated_count", report.DeactivatedCount),
		slog.Int("failed_dispatch_count", report.FailedDispatchCount),
	)

	return report, nil
}

// processOne advances a single reminder. The returned error is non-nil only
// for store failures, which abort the batch; dispatch failures are absorbed
// into the result item.
func (s *Service) processOne(ctx context.Context, reminder *domain.Reminder, now time.Time) (*ResultItem, error) {
	item := &ResultItem{
		ReminderID: reminder.ID,
		EntryID:    reminder.EntryID,
		Kind:       reminder.Kind,
	}
	if reminder.NextRunAt == nil {
		// FindDue never returns these; guard against a broken store impl.
		item.Skipped = true
		item.SkipReason = "no next run instant"
		return item, nil
	}
	occurrence := *reminder.NextRunAt
	item.FiredAt = occurrence

	state := domain.ScheduleState{
		LastSentAt: &now,
	}
	switch {
	case reminder.Kind == domain.KindOneTime:
		state.IsActive = false
	default:
		next, err := s.calculator.NextRun(reminder, now)
		if err != nil {
			// A stored schedule that no longer validates must not wedge the
			// loop: deactivate it and surface the configuration error.
			slog.ErrorContext(ctx, "stored reminder has invalid schedule, deactivating",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("error", err.Error()),
			)
			item.Error = err.Error()
			state.IsActive = false
			state.LastSentAt = reminder.LastSentAt
			claimed, claimErr := s.reminderRepo.CompareAndUpdate(ctx, reminder.ID, occurrence, state)
			if claimErr != nil {
				return item, claimErr
			}
			if !claimed {
				item.Skipped = true
				item.SkipReason = "claimed by another processor"
			} else {
				item.Deactivated = true
			}
			return item, nil
		}
		state.NextRunAt = next
		state.IsActive = next != nil
	}

	claimed, err := s.reminderRepo.CompareAndUpdate(ctx, reminder.ID, occurrence, state)
	if err != nil {
		return item, err
	}
	if !claimed {
		// Another processor advanced this reminder first; normal skip.
		slog.DebugContext(ctx, "reminder already claimed",
			slog.String("reminder_id", reminder.ID.String()),
			slog.Time("occurrence", occurrence),
		)
		item.Skipped = true
		item.SkipReason = "claimed by another processor"
		return item, nil
	}

	item.NextRunAt = state.NextRunAt
	item.Deactivated = !state.IsActive

	s.dispatch(ctx, reminder, occurrence, now, item)
	return item, nil
}

func (s *Service) dispatch(ctx context.Context, reminder *domain.Reminder, occurrence, now time.Time, item *ResultItem) {
	ctx, span := tracing.StartDispatchSpan(ctx, reminder.ID.String(), reminder.Kind.String())
	defer span.End()

	if s.dispatchLedger != nil {
		dispatched, err := s.dispatchLedger.WasDispatched(ctx, reminder.ID, occurrence)
		if err != nil {
			slog.WarnContext(ctx, "failed to check dispatch ledger",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("error", err.Error()),
			)
			// Treat as not dispatched; the claim already guards delivery.
		} else if dispatched {
			slog.DebugContext(ctx, "occurrence already dispatched",
				slog.String("reminder_id", reminder.ID.String()),
				slog.Time("occurrence", occurrence),
			)
			item.Delivered = true
			return
		}
	}

	notification := &domain.Notification{
		ReminderID: reminder.ID,
		EntryID:    reminder.EntryID,
		EntryTitle: reminder.EntryTitle,
		Kind:       reminder.Kind,
		FiredAt:    occurrence,
	}

	if err := s.notifier.Send(ctx, notification); err != nil {
		// The schedule is already advanced; a bad notification channel must
		// not cause the occurrence to re-fire.
		slog.ErrorContext(ctx, "failed to dispatch reminder notification",
			slog.String("reminder_id", reminder.ID.String()),
			slog.String("entry_id", reminder.EntryID.String()),
			slog.String("error", err.Error()),
		)
		item.Error = err.Error()
	} else {
		item.Delivered = true
	}

	if s.dispatchLedger != nil {
		record := &domain.DispatchRecord{
			ReminderID:   reminder.ID,
			EntryID:      reminder.EntryID,
			Occurrence:   occurrence,
			DispatchedAt: now,
			Delivered:    item.Delivered,
		}
		if err := s.dispatchLedger.MarkDispatched(ctx, record); err != nil {
			slog.WarnContext(ctx, "failed to record dispatch",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Service) tally(ctx context.Context, report *Report, item *ResultItem) {
	outcome := "processed"
	switch {
	case item.Skipped:
		report.SkippedCount++
		outcome = "skipped"
	default:
		report.ProcessedCount++
		if item.Deactivated {
			report.DeactivatedCount++
		}
		if !item.Delivered && item.Error != "" {
			report.FailedDispatchCount++
			outcome = "dispatch_failed"
		}
	}

	if s.processorMetrics != nil {
		s.processorMetrics.RecordReminderProcessed(ctx, item.Kind.String(), outcome)
	}
}

func (s *Service) finishRun(ctx context.Context, runID uuid.UUID, now time.Time, started time.Time, report *Report) {
	duration := time.Since(started)

	if s.processorMetrics != nil {
		s.processorMetrics.RecordProcessRun(ctx, duration, report.DueCount)
	}

	if s.resultRecorder != nil {
		record := &domain.DispatchRunRecord{
			RunID:            runID.String(),
			ProcessedAt:      now,
			DueCount:         report.DueCount,
			ProcessedCount:   report.ProcessedCount,
			SkippedCount:     report.SkippedCount,
			DeactivatedCount: report.DeactivatedCount,
			FailedCount:      report.FailedDispatchCount,
			Duration:         duration,
		}
		if err := s.resultRecorder.RecordRun(ctx, record); err != nil {
			slog.WarnContext(ctx, "failed to record dispatch run",
				slog.String("run_id", runID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
