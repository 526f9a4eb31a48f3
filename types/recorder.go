package types

import "context"

// Recorder persists the first computed assignment per (subject, experiment)
// pair for audit and downstream analytics.
//
// Semantics:
//   - Insert-if-absent: if a record already exists for the pair, the
//     existing stored assignment is returned unchanged. The stored value
//     stays sticky even if a later config change would compute a
//     different assignment for new calls.
//   - Under concurrent first-time calls for the same pair, exactly one
//     write wins and every caller observes the same final stored value.
//   - Contention on unrelated pairs must not serialize.
//
// Recording is decoupled from resolution: feature code decides when an
// exposure officially occurs and records at that point only.
type Recorder interface {
	// RecordIfAbsent stores the assignment for (subjectKey, assignment.ExperimentKey)
	// unless a record already exists, and returns the stored assignment.
	//
	// Parameters:
	//   - ctx: Context for timeout/cancellation of the backing store write
	//   - subjectKey: Stable subject identifier
	//   - assignment: Assignment computed by the resolver
	//
	// Returns:
	//   - Assignment: The stored assignment (existing record, or the one just written)
	//   - bool: true if this call created the record, false if one already existed
	//   - error: Non-nil only on backing store failure; the input assignment
	//     remains valid for the caller regardless
	RecordIfAbsent(ctx context.Context, subjectKey string, assignment Assignment) (Assignment, bool, error)
}
