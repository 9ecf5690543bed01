package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scutta-ladder/internal/usecase")

// startUsecaseSpan only opens a child span under an active request span.
// Background callers such as the operator CLI get a noop span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// failSpan marks the span as failed for store and infrastructure errors.
// Caller mistakes stay unmarked.
func failSpan(span trace.Span, err error) {
	if err == nil || errors.IsAny(err, ErrInvalidInput, ErrNotFound, ErrConflict) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
