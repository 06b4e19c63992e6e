// File: context.go
// Role: threads a *log.Logger and a per-run identifier through a
// context.Context, so Run never needs a package-global logger or an
// out-of-band run-id parameter.
package restructure

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ctxKey is a distinct type for this package's context keys, so they can
// never collide with keys set by an importer.
type ctxKey int

const (
	loggerKey ctxKey = iota
	runIDKey
)

// WithLogger returns a context carrying l, retrievable by the pipeline via
// LoggerFromContext. Callers that never call this get log.Default().
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext retrieves the logger attached by WithLogger, falling
// back to log.Default() so Run always has somewhere to write.
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}

// WithRunID returns a context carrying id as the run's identifier. Mostly
// useful for tests that want a deterministic id instead of Run's random one.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// runIDFromContext returns the run id attached by WithRunID, minting a
// fresh uuid when the caller never set one.
func runIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
