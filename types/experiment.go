package types

import "fmt"

// Status represents the lifecycle status of an experiment.
//
// Only active experiments assign live variants. Paused and completed
// experiments remain resolvable but always yield "not in experiment",
// which preserves historical lookups without live assignment.
type Status string

// Experiment lifecycle statuses.
const (
	// StatusActive means the experiment assigns variants to sampled subjects.
	StatusActive Status = "active"

	// StatusPaused means assignment is temporarily suspended; no subject
	// participates until the experiment is re-activated.
	StatusPaused Status = "paused"

	// StatusCompleted means the experiment has ended; the key stays
	// resolvable for historical reconstruction but never assigns.
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known experiment status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	default:
		return false
	}
}

// Experiment is a published experiment configuration.
//
// Experiments are immutable once published: the Store copies them on
// Publish and hands out copies on Get, so callers never share mutable
// state. The Key is the identity of an experiment for its whole
// lifetime; changing the variant set or semantics requires a new key,
// otherwise the determinism guarantee for already-bucketed subjects
// would silently break.
type Experiment struct {
	// Key uniquely identifies the experiment. Stable across reloads.
	Key string `json:"key" yaml:"key"`

	// Name is a display label with no uniqueness constraint.
	Name string `json:"name" yaml:"name"`

	// Variants is the ordered list of variant names. Must be non-empty
	// and each name unique within the experiment. Order matters: the
	// bucketing function partitions [0,1) in variant-list order.
	Variants []string `json:"variants" yaml:"variants"`

	// Sampling is the fraction of subjects in [0.0, 1.0] that
	// participate in the experiment at all.
	Sampling float64 `json:"sampling" yaml:"sampling"`

	// Status is the lifecycle status (active, paused, completed).
	Status Status `json:"status" yaml:"status"`
}

// Validate checks the experiment invariants enforced at publish time.
//
// Rules:
//   - Key must be non-empty
//   - Variants must have at least one entry
//   - Variant names must be unique within the experiment
//   - Sampling must be within [0.0, 1.0]
//   - Status must be one of active, paused, completed
//
// Returns:
//   - error: Sentinel validation error wrapped with the experiment key, nil if valid
func (e Experiment) Validate() error {
	if e.Key == "" {
		return ErrMissingExperimentKey
	}
	if len(e.Variants) == 0 {
		return fmt.Errorf("experiment %q: %w", e.Key, ErrNoVariants)
	}

	seen := make(map[string]struct{}, len(e.Variants))
	for _, v := range e.Variants {
		if v == "" {
			return fmt.Errorf("experiment %q: %w: empty variant name", e.Key, ErrInvalidVariant)
		}
		if _, ok := seen[v]; ok {
			return fmt.Errorf("experiment %q: %w: %q", e.Key, ErrDuplicateVariant, v)
		}
		seen[v] = struct{}{}
	}

	if e.Sampling < 0.0 || e.Sampling > 1.0 {
		return fmt.Errorf("experiment %q: %w: %v", e.Key, ErrSamplingOutOfRange, e.Sampling)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("experiment %q: %w: %q", e.Key, ErrInvalidStatus, e.Status)
	}

	return nil
}

// Clone returns a deep copy of the experiment.
//
// The Variants slice is copied so the clone shares no mutable state
// with the original.
func (e Experiment) Clone() Experiment {
	c := e
	c.Variants = make([]string, len(e.Variants))
	copy(c.Variants, e.Variants)

	return c
}
