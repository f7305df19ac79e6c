package trigger

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/service/processor"
)

// Ticker drives the due-reminder sweep on a fixed interval. Notify can be
// used to request an extra sweep, for example right after a reminder write.
type Ticker struct {
	processorService *processor.Service
	interval         time.Duration
	notifyCh         chan struct{}
}

func NewTicker(processorService *processor.Service, interval time.Duration) *Ticker {
	return &Ticker{
		processorService: processorService,
		interval:         interval,
		notifyCh:         make(chan struct{}, 1),
	}
}

// Notify triggers an immediate sweep. Non-blocking if one is already pending.
func (t *Ticker) Notify() {
	select {
	case t.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	slog.InfoContext(ctx, "reminder ticker started",
		slog.Duration("interval", t.interval),
	)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder ticker stopped")
			return
		case <-ticker.C:
			t.sweep(ctx)
		case <-t.notifyCh:
			slog.DebugContext(ctx, "reminder ticker triggered by notification")
			t.sweep(ctx)
		}
	}
}

func (t *Ticker) sweep(ctx context.Context) {
	report, err := t.processorService.ProcessDue(ctx, time.Now().UTC())
	if err != nil {
		slog.ErrorContext(ctx, "due reminder sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}

	if report.DueCount > 0 {
		slog.InfoContext(ctx, "due reminder sweep completed",
			slog.Int("due_count", report.DueCount),
			slog.Int("processed_count", report.ProcessedCount),
			slog.Int("skipped_count", report.SkippedCount),
		)
	}
}
