package types

import "errors"

// Sentinel errors for the Sortition library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Engine, Store, Recorder, Source)
//   - Use consistent messages across similar error types

// Engine errors - Public API errors returned by the Engine component.
var (
	// ErrInvalidConfig is returned when the engine configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExperimentNotFound is returned when resolving against a key that
	// is absent from the current configuration snapshot. Callers commonly
	// treat this as "not in experiment", but the engine leaves that
	// decision to them.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrSourceRequired is returned when an experiment source is nil.
	ErrSourceRequired = errors.New("experiment source is required")
)

// Store errors - Experiment validation errors rejected at publish time.
// A publish that fails validation leaves the previous snapshot authoritative.
var (
	// ErrMissingExperimentKey is returned when an experiment has an empty key.
	ErrMissingExperimentKey = errors.New("experiment key is required")

	// ErrNoVariants is returned when an experiment has an empty variant list,
	// or when a variant count of zero reaches the bucketing function.
	ErrNoVariants = errors.New("experiment has no variants")

	// ErrInvalidVariant is returned when a variant name is empty.
	ErrInvalidVariant = errors.New("invalid variant name")

	// ErrDuplicateVariant is returned when a variant name repeats within
	// a single experiment.
	ErrDuplicateVariant = errors.New("duplicate variant name")

	// ErrDuplicateExperiment is returned when a published snapshot contains
	// the same experiment key twice.
	ErrDuplicateExperiment = errors.New("duplicate experiment key")

	// ErrSamplingOutOfRange is returned when sampling is outside [0.0, 1.0].
	ErrSamplingOutOfRange = errors.New("sampling rate out of range [0.0, 1.0]")

	// ErrInvalidStatus is returned when an experiment status is not one of
	// active, paused, completed.
	ErrInvalidStatus = errors.New("invalid experiment status")
)

// Recorder errors - Assignment persistence errors. Recording failures are
// reported and logged, never surfaced as a failure of the already-computed
// assignment.
var (
	// ErrRecordFailed is returned when persisting an assignment fails.
	ErrRecordFailed = errors.New("failed to record assignment")

	// ErrKVBucketRequired is returned when a KV-backed component is
	// constructed without a KV bucket.
	ErrKVBucketRequired = errors.New("KV bucket is required")
)

// Source errors - Experiment source errors.
var (
	// ErrWatcherFailed is returned when a source watch operation fails.
	ErrWatcherFailed = errors.New("watcher operation failed")
)
