package sortition

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/sortition/internal/hash"
	"github.com/arloliu/sortition/internal/logging"
	"github.com/arloliu/sortition/internal/metrics"
	"github.com/arloliu/sortition/types"
)

// Engine is the experiment assignment engine.
//
// Engine is the main entry point of the Sortition library. It combines:
//   - A configuration Store holding the current experiment snapshot
//   - The deterministic bucketing function for subject-to-variant mapping
//   - An optional Recorder persisting first exposures for analytics
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Resolve is a lock-free read against an immutable snapshot
//   - Publish swaps a single snapshot pointer and never blocks readers
//
// Determinism:
// For a fixed published snapshot, Resolve is a pure function of
// (subjectKey, experimentKey): the same inputs produce the same
// assignment on every call and across process restarts. No lookup table
// keyed by subject exists anywhere; assignments are computed on demand
// from a stable hash.
//
// Testing:
// Consumers can define minimal interfaces for mocking:
//
//	type VariantResolver interface {
//	    Resolve(subjectKey, experimentKey string) (sortition.Assignment, error)
//	}
type Engine struct {
	cfg   Config
	store *Store

	// Optional dependencies
	recorder types.Recorder
	hooks    *types.Hooks
	metrics  types.MetricsCollector
	logger   types.Logger
}

// NewEngine creates a new Engine instance with the provided configuration.
//
// Returns a concrete *Engine struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces
// for testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations
//   - opts: Optional configuration (recorder, hooks, metrics, logger)
//
// Returns:
//   - *Engine: Initialized engine with an empty configuration snapshot
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := sortition.DefaultConfig()
//	eng, err := sortition.NewEngine(&cfg,
//	    sortition.WithRecorder(recorder.NewMemory()),
//	    sortition.WithLogger(logger),
//	)
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Apply options
	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	collector := options.metrics
	if collector == nil {
		collector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	return &Engine{
		cfg:      *cfg,
		store:    NewStore(loggerInstance, collector),
		recorder: options.recorder,
		hooks:    options.hooks,
		metrics:  collector,
		logger:   loggerInstance,
	}, nil
}

// Resolve computes the assignment for a subject in an experiment.
//
// Algorithm:
//  1. Look up the experiment in the current snapshot; absent keys fail
//     with types.ErrExperimentNotFound (the caller decides whether that
//     means "not in experiment" or a propagated error).
//  2. Paused and completed experiments deterministically resolve to
//     "not in experiment" without error.
//  3. Compute the subject's bucket value v in [0,1); subjects with
//     v >= sampling are outside the experiment.
//  4. Rescale v by the sampling rate and pick the variant by equal-width
//     interval. Rescaling keeps the variant split uniform among
//     participating subjects regardless of the absolute sampling rate.
//
// Shrinking the sampling rate only removes subjects from the experiment;
// it never reassigns a participant whose bucket value still passes the
// gate, except subjects at the interval margins which may flip variant.
// That bounded drift is an accepted limitation of the rescale technique.
//
// Parameters:
//   - subjectKey: Stable subject identifier (user, session, device)
//   - experimentKey: Experiment to resolve against
//
// Returns:
//   - types.Assignment: Computed assignment (never a zero value on nil error)
//   - error: types.ErrExperimentNotFound if the key is not in the snapshot
func (e *Engine) Resolve(subjectKey, experimentKey string) (types.Assignment, error) {
	exp, ok := e.store.lookup(experimentKey)
	if !ok {
		e.metrics.RecordResolve(experimentKey, types.ResolveOutcomeNotFound)

		return types.Assignment{}, fmt.Errorf("experiment %q: %w", experimentKey, types.ErrExperimentNotFound)
	}

	if exp.Status != types.StatusActive {
		e.metrics.RecordResolve(experimentKey, types.ResolveOutcomeInactive)

		return notInExperiment(experimentKey), nil
	}

	v := hash.Bucket(subjectKey, experimentKey)
	if v >= exp.Sampling {
		e.metrics.RecordResolve(experimentKey, types.ResolveOutcomeNotSampled)

		return notInExperiment(experimentKey), nil
	}

	// v < sampling implies sampling > 0, so the rescale below is safe.
	idx, err := hash.ChooseVariant(v/exp.Sampling, len(exp.Variants))
	if err != nil {
		// Unreachable for a validated snapshot.
		return types.Assignment{}, fmt.Errorf("experiment %q: %w", experimentKey, err)
	}

	variant := exp.Variants[idx]
	e.metrics.RecordResolve(experimentKey, types.ResolveOutcomeAssigned)
	e.metrics.RecordVariantAssignment(experimentKey, variant)

	return types.Assignment{
		ExperimentKey: experimentKey,
		Variant:       variant,
		InExperiment:  true,
	}, nil
}

// Record persists the first exposure for (subjectKey, assignment) best-effort.
//
// The write is bounded by Config.OperationTimeout. A recording failure is
// logged and counted but never surfaced: the caller already holds a valid
// assignment, and a failed audit record does not invalidate it. If a
// record already exists for the pair, the previously stored assignment is
// returned, preserving the sticky analytics view even when a config
// change would compute a different value today.
//
// Parameters:
//   - ctx: Context for cancellation; the operation timeout is layered on top
//   - subjectKey: Stable subject identifier
//   - assignment: Assignment returned by Resolve
//
// Returns:
//   - types.Assignment: The stored assignment, or the input when no
//     recorder is configured or the write failed
func (e *Engine) Record(ctx context.Context, subjectKey string, assignment types.Assignment) types.Assignment {
	if e.recorder == nil {
		e.logger.Debug("no recorder configured, skipping assignment record",
			"subject", subjectKey, "experiment", assignment.ExperimentKey)

		return assignment
	}

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	start := time.Now()
	stored, created, err := e.recorder.RecordIfAbsent(opCtx, subjectKey, assignment)
	e.metrics.RecordRecordDuration(time.Since(start).Seconds())

	if err != nil {
		e.metrics.RecordRecordAttempt(false)
		e.logger.Error("assignment record failed",
			"subject", subjectKey, "experiment", assignment.ExperimentKey, "error", err)

		return assignment
	}

	e.metrics.RecordRecordAttempt(true)

	if created {
		e.metrics.RecordFirstExposure(assignment.ExperimentKey)
		e.logger.Debug("first exposure recorded",
			"subject", subjectKey, "experiment", assignment.ExperimentKey, "variant", stored.Variant)

		if e.hooks != nil && e.hooks.OnFirstExposure != nil {
			e.hooks.OnFirstExposure(ctx, subjectKey, stored)
		}
	}

	return stored
}

// ResolveAndRecord resolves an assignment and records it in one call.
//
// Convenience for flows where resolution and official exposure coincide.
// The recording half follows Record semantics: best-effort, bounded,
// never an error source.
//
// Parameters:
//   - ctx: Context for the recording write
//   - subjectKey: Stable subject identifier
//   - experimentKey: Experiment to resolve against
//
// Returns:
//   - types.Assignment: The stored (or freshly computed) assignment
//   - error: types.ErrExperimentNotFound if the key is not in the snapshot
func (e *Engine) ResolveAndRecord(ctx context.Context, subjectKey, experimentKey string) (types.Assignment, error) {
	assignment, err := e.Resolve(subjectKey, experimentKey)
	if err != nil {
		return types.Assignment{}, err
	}

	return e.Record(ctx, subjectKey, assignment), nil
}

// Publish atomically replaces the engine's configuration snapshot.
//
// See Store.Publish for validation and atomicity semantics. On success
// the OnSnapshotPublished hook fires with the new snapshot version.
//
// Parameters:
//   - ctx: Context passed through to the publish hook
//   - experiments: Complete new configuration set (NOT a delta)
//
// Returns:
//   - error: Validation error, nil on success (previous snapshot stays
//     authoritative on failure)
func (e *Engine) Publish(ctx context.Context, experiments []types.Experiment) error {
	if err := e.store.Publish(experiments); err != nil {
		return err
	}

	if e.hooks != nil && e.hooks.OnSnapshotPublished != nil {
		e.hooks.OnSnapshotPublished(ctx, e.store.Version(), e.store.Len())
	}

	return nil
}

// Get returns the experiment configuration for key from the current snapshot.
//
// Parameters:
//   - key: Experiment key to look up
//
// Returns:
//   - types.Experiment: Deep copy of the configuration (zero value if absent)
//   - bool: true if the key exists in the current snapshot
func (e *Engine) Get(key string) (types.Experiment, bool) {
	return e.store.Get(key)
}

// LoadFromSource lists experiments from a source and publishes them as a
// new snapshot.
//
// The listing is bounded by Config.OperationTimeout. Typical wiring calls
// this once at startup and again from the source's change notification
// (file watch, KV watch).
//
// Parameters:
//   - ctx: Context for the source listing
//   - src: Experiment source to load from
//
// Returns:
//   - error: types.ErrSourceRequired, source listing error, or validation error
func (e *Engine) LoadFromSource(ctx context.Context, src types.ExperimentSource) error {
	if src == nil {
		return ErrSourceRequired
	}

	opCtx, cancel := context.WithTimeout(ctx, e.cfg.OperationTimeout)
	defer cancel()

	experiments, err := src.ListExperiments(opCtx)
	if err != nil {
		return fmt.Errorf("failed to list experiments: %w", err)
	}

	return e.Publish(ctx, experiments)
}

// SnapshotVersion returns the version of the current configuration snapshot.
func (e *Engine) SnapshotVersion() uint64 {
	return e.store.Version()
}

// ExperimentCount returns the number of experiments in the current snapshot.
func (e *Engine) ExperimentCount() int {
	return e.store.Len()
}

// ExperimentKeys returns the sorted experiment keys of the current snapshot.
func (e *Engine) ExperimentKeys() []string {
	return e.store.Keys()
}

// notInExperiment returns the deterministic "not participating" assignment.
func notInExperiment(experimentKey string) types.Assignment {
	return types.Assignment{
		ExperimentKey: experimentKey,
		Variant:       types.VariantNone,
		InExperiment:  false,
	}
}
