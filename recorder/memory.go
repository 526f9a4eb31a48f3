package recorder

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/sortition/types"
)

// Memory implements an in-process assignment recorder.
//
// Records live in a concurrent map; the insert-if-absent guarantee comes
// from the map's atomic LoadOrStore, so concurrent first-time callers for
// the same pair all observe the single winning record, and unrelated
// pairs never contend on a shared lock.
//
// Suitable for tests and single-instance deployments. Records do not
// survive a process restart; use KV for durable recording.
type Memory struct {
	records *xsync.Map[string, types.Assignment]
}

// Compile-time assertion that Memory implements Recorder.
var _ types.Recorder = (*Memory)(nil)

// NewMemory creates a new in-memory assignment recorder.
//
// Returns:
//   - *Memory: Empty recorder instance
//
// Example:
//
//	rec := recorder.NewMemory()
//	eng, err := sortition.NewEngine(&cfg, sortition.WithRecorder(rec))
func NewMemory() *Memory {
	return &Memory{
		records: xsync.NewMap[string, types.Assignment](),
	}
}

// RecordIfAbsent stores the assignment unless a record already exists.
//
// Never blocks and ignores the context deadline; the in-memory write is a
// single atomic map operation.
//
// Parameters:
//   - ctx: Unused (kept for the Recorder contract)
//   - subjectKey: Stable subject identifier
//   - assignment: Assignment computed by the resolver
//
// Returns:
//   - types.Assignment: The stored assignment (existing record wins)
//   - bool: true if this call created the record
//   - error: Always nil
func (m *Memory) RecordIfAbsent(_ context.Context, subjectKey string, assignment types.Assignment) (types.Assignment, bool, error) {
	key := pairKey(subjectKey, assignment.ExperimentKey)
	stored, loaded := m.records.LoadOrStore(key, assignment)

	return stored, !loaded, nil
}

// Get returns the recorded assignment for a (subject, experiment) pair.
//
// Parameters:
//   - subjectKey: Stable subject identifier
//   - experimentKey: Experiment key
//
// Returns:
//   - types.Assignment: The recorded assignment (zero value if absent)
//   - bool: true if a record exists
func (m *Memory) Get(subjectKey, experimentKey string) (types.Assignment, bool) {
	return m.records.Load(pairKey(subjectKey, experimentKey))
}

// Len returns the number of recorded (subject, experiment) pairs.
func (m *Memory) Len() int {
	return m.records.Size()
}

// pairKey builds the map key for a (subject, experiment) pair.
//
// The null byte separator cannot appear in either key coming from real
// callers, so distinct pairs never collide.
func pairKey(subjectKey, experimentKey string) string {
	return subjectKey + "\x00" + experimentKey
}
