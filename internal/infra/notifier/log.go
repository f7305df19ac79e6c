package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

// LogNotifier writes notifications to the structured log instead of an
// external endpoint. It is the default when no webhook URL is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, notification *domain.Notification) error {
	slog.InfoContext(ctx, "reminder fired",
		slog.String("reminder_id", notification.ReminderID.String()),
		slog.String("entry_id", notification.EntryID.String()),
		slog.String("entry_title", notification.EntryTitle),
		slog.String("kind", string(notification.Kind)),
		slog.String("fired_at", notification.FiredAt.UTC().Format(time.RFC3339)),
	)
	return nil
}
