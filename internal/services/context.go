package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	taskKey  contextKey = "task"
	showKey  contextKey = "show"
)

// WithRunID annotates context with the reconciliation pass identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the pass identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTask annotates context with the task source directory.
func WithTask(ctx context.Context, source string) context.Context {
	if source == "" {
		return ctx
	}
	return context.WithValue(ctx, taskKey, source)
}

// TaskFromContext returns the task source directory if present.
func TaskFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithShow annotates context with the show directory name being reconciled.
func WithShow(ctx context.Context, show string) context.Context {
	if show == "" {
		return ctx
	}
	return context.WithValue(ctx, showKey, show)
}

// ShowFromContext returns the show directory name if present.
func ShowFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(showKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
