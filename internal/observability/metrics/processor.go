package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	processorMeterName = "reminder.processor"
)

type ProcessorMetrics struct {
	remindersProcessed metric.Int64Counter
	processDuration    metric.Float64Histogram
	dueBatchSize       metric.Int64Histogram
}

func NewProcessorMetrics() (*ProcessorMetrics, error) {
	meter := otel.Meter(processorMeterName)

	remindersProcessed, err := meter.Int64Counter(
		"reminder_processed_total",
		metric.WithDescription("Total number of due reminders handled, by outcome"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	processDuration, err := meter.Float64Histogram(
		"reminder_process_run_duration_seconds",
		metric.WithDescription("Duration of one due-reminder processing run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
		),
	)
	if err != nil {
		return nil, err
	}

	dueBatchSize, err := meter.Int64Histogram(
		"reminder_due_batch_size",
		metric.WithDescription("Number of due reminders found per processing run"),
		metric.WithUnit("{reminder}"),
		metric.WithExplicitBucketBoundaries(
			0, 1, 5, 10, 25, 50, 100, 250, 500,
		),
	)
	if err != nil {
		return nil, err
	}

	return &ProcessorMetrics{
		remindersProcessed: remindersProcessed,
		processDuration:    processDuration,
		dueBatchSize:       dueBatchSize,
	}, nil
}

func (m *ProcessorMetrics) RecordReminderProcessed(ctx context.Context, kind, outcome string) {
	m.remindersProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", outcome),
		),
	)
}

func (m *ProcessorMetrics) RecordProcessRun(ctx context.Context, duration time.Duration, dueCount int) {
	m.processDuration.Record(ctx, duration.Seconds())
	m.dueBatchSize.Record(ctx, int64(dueCount))
}
