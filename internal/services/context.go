package services

import "context"

type contextKey int

const (
	runIDKey contextKey = iota
	subjectKey
	rowKey
	stageKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRunID tags ctx with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

func RunIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, runIDKey) }

// WithSubject tags ctx with the subject of the row in progress.
func WithSubject(ctx context.Context, subject string) context.Context {
	return withString(ctx, subjectKey, subject)
}

func SubjectFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, subjectKey) }

// WithRow tags ctx with the 1-based manifest line number.
func WithRow(ctx context.Context, row int) context.Context {
	return context.WithValue(ctx, rowKey, row)
}

func RowFromContext(ctx context.Context) (int, bool) {
	row, ok := ctx.Value(rowKey).(int)
	return row, ok
}

// WithStage tags ctx with the pipeline stage (resolve, normalize, extract).
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, stageKey) }
