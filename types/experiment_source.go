package types

import "context"

// ExperimentSource discovers experiment configurations for publishing.
//
// Sources are read by the engine (or by application wiring code) and
// their full result set is published into the configuration store as
// one atomic snapshot. A source never mutates published state directly.
type ExperimentSource interface {
	// ListExperiments returns the complete current set of experiment
	// configurations known to the source.
	//
	// Parameters:
	//   - ctx: Context for timeout/cancellation
	//
	// Returns:
	//   - []Experiment: All experiments, unvalidated (validation happens at publish)
	//   - error: Discovery failure (I/O, decode, connectivity)
	ListExperiments(ctx context.Context) ([]Experiment, error)
}
