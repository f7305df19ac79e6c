package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

type webhookPayload struct {
	ReminderID string `json:"reminder_id"`
	EntryID    string `json:"entry_id"`
	EntryTitle string `json:"entry_title"`
	Kind       string `json:"kind"`
	FiredAt    string `json:"fired_at"`
}

// WebhookNotifier delivers reminder notifications by POSTing them to
// a configured endpoint, retrying transient failures with exponential
// backoff.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	maxRetries int
}

func NewWebhookNotifier(url string, maxRetries int) *WebhookNotifier {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, notification *domain.Notification) error {
	payload := webhookPayload{
		ReminderID: notification.ReminderID.String(),
		EntryID:    notification.EntryID.String(),
		EntryTitle: notification.EntryTitle,
		Kind:       string(notification.Kind),
		FiredAt:    notification.FiredAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < n.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
			slog.Debug("retrying notification delivery",
				slog.String("reminder_id", payload.ReminderID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := n.doRequest(ctx, body, payload.ReminderID); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	slog.Error("all retries exhausted for notification delivery",
		slog.String("reminder_id", payload.ReminderID),
		slog.Int("max_retries", n.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("failed to deliver notification after %d retries: %w", n.maxRetries, lastErr)
}

func (n *WebhookNotifier) doRequest(ctx context.Context, body []byte, reminderID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to send notification webhook",
			slog.String("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		slog.Warn("unexpected status code from notification webhook",
			slog.String("reminder_id", reminderID),
			slog.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	slog.Debug("notification delivered",
		slog.String("reminder_id", reminderID),
	)
	return nil
}
