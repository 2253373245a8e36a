// Package requestcontext provides context accessors for run-scoped values.
//
// The ingestion pipeline stamps every row batch with the same wall-clock
// time and correlates log lines through a run identifier. Both are carried
// on the context so the accumulator and planner stay free of clock and
// wiring dependencies.
//
// Usage in the pipeline (set values):
//
//	ctx = requestcontext.WithRunID(ctx, runID)
//	ctx = requestcontext.WithTime(ctx, startedAt)
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	runID := requestcontext.RunID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "cbso/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	runIDKey   struct{}
	runTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRunID   = runIDKey{}
	ContextKeyRunTime = runTimeKey{}
)

// RunID retrieves the ingestion run identifier from the context.
// Returns the zero value if not set.
func RunID(ctx context.Context) id.RunID {
	if runID, ok := ctx.Value(ContextKeyRunID).(id.RunID); ok {
		return runID
	}
	return id.RunID{}
}

// WithRunID injects a run identifier into the context.
func WithRunID(ctx context.Context, runID id.RunID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// Now retrieves the run-scoped time from context.
// Falls back to time.Now() if not set (for CLI paths and tests that do not
// pin a batch time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRunTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - unit tests that assert on row timestamps
//   - keeping one consistent last_update value across a company's batch
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRunTime, t)
}
