package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/journal-reminder-scheduling/internal/domain"
)

const (
	dispatchedKeyPrefix = "reminder:dispatched:"

	// Long enough to cover trigger retries and replica races; dispatched
	// occurrences have no value beyond that window.
	dispatchRecordTTL = 48 * time.Hour
)

type dispatchRecord struct {
	ReminderID   string    `json:"reminder_id"`
	EntryID      string    `json:"entry_id"`
	Occurrence   time.Time `json:"occurrence"`
	DispatchedAt time.Time `json:"dispatched_at"`
	Delivered    bool      `json:"delivered"`
}

type dispatchLedger struct {
	client *redis.Client
}

func NewDispatchLedger(client *redis.Client) domain.DispatchLedger {
	return &dispatchLedger{
		client: client,
	}
}

func (l *dispatchLedger) MarkDispatched(ctx context.Context, record *domain.DispatchRecord) error {
	if record == nil {
		return ErrInvalidDispatchData
	}

	key := dispatchedKeyPrefix + domain.OccurrenceKey(record.ReminderID, record.Occurrence)

	data, err := json.Marshal(dispatchRecord{
		ReminderID:   record.ReminderID.String(),
		EntryID:      record.EntryID.String(),
		Occurrence:   record.Occurrence.UTC(),
		DispatchedAt: record.DispatchedAt.UTC(),
		Delivered:    record.Delivered,
	})
	if err != nil {
		return ErrInvalidDispatchData
	}

	return l.client.Set(ctx, key, data, dispatchRecordTTL).Err()
}

func (l *dispatchLedger) WasDispatched(ctx context.Context, reminderID uuid.UUID, occurrence time.Time) (bool, error) {
	key := dispatchedKeyPrefix + domain.OccurrenceKey(reminderID, occurrence)

	exists, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return exists > 0, nil
}
