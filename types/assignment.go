package types

// VariantNone is the sentinel variant for subjects that are not in an
// experiment (sampled out, or the experiment is paused/completed).
const VariantNone = ""

// Assignment is the result of resolving a subject against an experiment.
//
// Assignments are derived values: they are recomputed on every resolve
// from the subject key, the experiment key, and the published
// configuration snapshot. A recorded copy may be persisted for
// analytics (see Recorder), but the recorded copy is never consulted
// during resolution.
type Assignment struct {
	// ExperimentKey is the key of the experiment this assignment was
	// computed against.
	ExperimentKey string `json:"experimentKey"`

	// Variant is the assigned variant name, or VariantNone when the
	// subject is not in the experiment.
	Variant string `json:"variant"`

	// InExperiment is true iff the subject passed the sampling gate
	// and the experiment was active at resolve time.
	InExperiment bool `json:"inExperiment"`
}
