package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional. Hooks are invoked synchronously on the calling
// goroutine, so implementations should complete quickly and must not
// call back into the engine.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 millisecond recommended; resolve is a hot path)
//   - Respect context cancellation
//   - Don't block on long I/O operations
type Hooks struct {
	// OnSnapshotPublished is called after a new configuration snapshot
	// becomes visible to readers.
	OnSnapshotPublished func(ctx context.Context, version uint64, experiments int)

	// OnFirstExposure is called when Record creates a new assignment
	// record, i.e. the first recorded exposure for a (subject, experiment)
	// pair. Repeat recordings do not fire the hook.
	OnFirstExposure func(ctx context.Context, subjectKey string, assignment Assignment)
}
