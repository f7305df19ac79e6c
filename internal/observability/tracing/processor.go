package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const processorTracerName = "github.com/KasumiMercury/journal-reminder-scheduling/internal/service/processor"

func ProcessorTracer() trace.Tracer {
	return otel.Tracer(processorTracerName)
}

func StartProcessRunSpan(ctx context.Context, runID string, now time.Time) (context.Context, trace.Span) {
	return ProcessorTracer().Start(ctx, "processor.process_due",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("reference_time", now.Format(time.RFC3339)),
		),
	)
}

func StartDispatchSpan(ctx context.Context, reminderID, kind string) (context.Context, trace.Span) {
	return ProcessorTracer().Start(ctx, "processor.dispatch",
		trace.WithAttributes(
			attribute.String("reminder_id", reminderID),
			attribute.String("kind", kind),
		),
	)
}
