package sortition

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arloliu/sortition/internal/logging"
	"github.com/arloliu/sortition/internal/metrics"
	"github.com/arloliu/sortition/types"
)

// snapshot is an immutable, fully-formed view of all published experiment
// configurations at one point in time. Snapshots are never mutated after
// publication; Publish builds a brand-new snapshot and swaps the pointer.
type snapshot struct {
	version     uint64
	experiments map[string]types.Experiment
}

// Store holds all known experiment configurations as an atomically
// swappable immutable snapshot.
//
// Thread Safety:
//   - Reads are lock-free: Get loads the current snapshot pointer and
//     never blocks on a concurrent Publish.
//   - Publish is the only mutator. Concurrent publishers are serialized,
//     but they never block readers; in-flight reads complete against the
//     snapshot they started with.
//
// A reader observes either the old snapshot or the new one in full,
// never a partial mix of the two.
type Store struct {
	snap atomic.Pointer[snapshot]

	// mu serializes publishers; readers never take it.
	mu sync.Mutex

	metrics types.MetricsCollector
	logger  types.Logger
}

// NewStore creates an empty configuration store.
//
// Parameters:
//   - logger: Logger for publish events (nop logger if nil)
//   - collector: Metrics collector for store gauges (nop collector if nil)
//
// Returns:
//   - *Store: Initialized store with an empty version-0 snapshot
func NewStore(logger types.Logger, collector types.MetricsCollector) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	if collector == nil {
		collector = metrics.NewNop()
	}

	s := &Store{
		metrics: collector,
		logger:  logger,
	}
	s.snap.Store(&snapshot{version: 0, experiments: map[string]types.Experiment{}})

	return s
}

// Get returns the experiment for key from the current snapshot.
//
// The returned experiment is a deep copy; mutating it cannot affect the
// published snapshot.
//
// Parameters:
//   - key: Experiment key to look up
//
// Returns:
//   - types.Experiment: The experiment configuration (zero value if absent)
//   - bool: true if the key exists in the current snapshot
func (s *Store) Get(key string) (types.Experiment, bool) {
	exp, ok := s.lookup(key)
	if !ok {
		return types.Experiment{}, false
	}

	return exp.Clone(), true
}

// lookup returns the stored experiment without cloning.
//
// The returned value shares the snapshot's Variants slice; callers on the
// resolve hot path read it and must never mutate it.
func (s *Store) lookup(key string) (types.Experiment, bool) {
	snap := s.snap.Load()
	exp, ok := snap.experiments[key]

	return exp, ok
}

// Publish atomically replaces the entire visible configuration set.
//
// Every experiment is validated against the invariants (non-empty unique
// variants, sampling within [0,1], known status, unique keys). If any
// experiment fails validation the whole publish is rejected and the
// previous snapshot remains authoritative.
//
// Parameters:
//   - experiments: Complete new configuration set (NOT a delta)
//
// Returns:
//   - error: First validation error encountered, nil on success
func (s *Store) Publish(experiments []types.Experiment) error {
	next := make(map[string]types.Experiment, len(experiments))
	for _, exp := range experiments {
		if err := exp.Validate(); err != nil {
			s.metrics.RecordPublish(false)
			s.logger.Error("snapshot publish rejected", "experiment", exp.Key, "error", err)

			return fmt.Errorf("publish rejected: %w", err)
		}
		if _, ok := next[exp.Key]; ok {
			s.metrics.RecordPublish(false)
			s.logger.Error("snapshot publish rejected", "experiment", exp.Key, "error", types.ErrDuplicateExperiment)

			return fmt.Errorf("publish rejected: %w: %q", types.ErrDuplicateExperiment, exp.Key)
		}
		next[exp.Key] = exp.Clone()
	}

	s.mu.Lock()
	version := s.snap.Load().version + 1
	s.snap.Store(&snapshot{version: version, experiments: next})
	s.mu.Unlock()

	s.metrics.RecordPublish(true)
	s.metrics.SetExperimentCount(len(next))
	s.metrics.SetSnapshotVersion(version)
	s.logger.Info("snapshot published", "version", version, "experiments", len(next))

	return nil
}

// Version returns the version of the current snapshot.
//
// Versions increase monotonically with each successful Publish, starting
// from 0 for the initial empty snapshot.
func (s *Store) Version() uint64 {
	return s.snap.Load().version
}

// Len returns the number of experiments in the current snapshot.
func (s *Store) Len() int {
	return len(s.snap.Load().experiments)
}

// Keys returns the sorted experiment keys of the current snapshot.
//
// Returns:
//   - []string: Sorted keys (empty slice for an empty snapshot)
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.snap.Load().experiments))
}
