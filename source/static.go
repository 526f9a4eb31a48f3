package source

import (
	"context"
	"sync"

	"github.com/arloliu/sortition/types"
)

// Static implements an experiment source with a fixed list of experiments.
type Static struct {
	mu          sync.RWMutex
	experiments []types.Experiment
}

var _ types.ExperimentSource = (*Static)(nil)

// NewStatic creates a new static experiment source.
//
// The source returns a fixed list of experiments that only changes via
// Update. Useful for testing and for applications that define their
// experiments in code at startup.
//
// Parameters:
//   - experiments: Fixed list of experiments
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]types.Experiment{{
//	    Key:      "inv.strategy",
//	    Variants: []string{"optimistic", "pessimistic"},
//	    Sampling: 1.0,
//	    Status:   types.StatusActive,
//	}})
//	err := eng.LoadFromSource(ctx, src)
func NewStatic(experiments []types.Experiment) *Static {
	s := &Static{}
	s.Update(experiments)

	return s
}

// ListExperiments returns the static list of experiments.
//
// Returns:
//   - []types.Experiment: Deep copy of the fixed experiment list
//   - error: Always nil (never fails)
func (s *Static) ListExperiments(_ context.Context) ([]types.Experiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Experiment, len(s.experiments))
	for i, exp := range s.experiments {
		result[i] = exp.Clone()
	}

	return result, nil
}

// Update replaces the experiment list.
//
// This allows the static source to simulate configuration changes, which
// is useful for testing reload scenarios. Callers must still invoke
// Engine.LoadFromSource for the change to become visible.
//
// Parameters:
//   - experiments: New list of experiments
func (s *Static) Update(experiments []types.Experiment) {
	copied := make([]types.Experiment, len(experiments))
	for i, exp := range experiments {
		copied[i] = exp.Clone()
	}

	s.mu.Lock()
	s.experiments = copied
	s.mu.Unlock()
}
