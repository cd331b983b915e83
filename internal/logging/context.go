package logging

import (
	"context"
	"log/slog"

	"ahclip/internal/services"
)

// Keys shared by every ahclip log record. The console handler lifts
// component, subject and row into the line prefix.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldSubject   = "subject"
	FieldRow       = "row" // 1-based manifest line
	FieldStage     = "stage"

	FieldEventType = "event_type" // e.g. row_skipped, transcode_retry
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
)

// ContextFields returns the run, row, subject and stage recorded on ctx via
// the services.With* helpers, in that order.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var attrs []slog.Attr
	if id, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldRunID, id))
	}
	if row, ok := services.RowFromContext(ctx); ok {
		attrs = append(attrs, slog.Int(FieldRow, row))
	}
	for _, f := range []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldSubject, services.SubjectFromContext},
		{FieldStage, services.StageFromContext},
	} {
		if v, ok := f.get(ctx); ok {
			attrs = append(attrs, slog.String(f.key, v))
		}
	}
	return attrs
}

// WithContext binds ContextFields(ctx) to logger. A nil logger discards.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(attrs))
}
