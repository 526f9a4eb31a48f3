package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from concurrent request paths and must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ResolverMetrics
	StoreMetrics
	RecorderMetrics
}

// Resolve outcome labels reported via ResolverMetrics.RecordResolve.
const (
	// ResolveOutcomeAssigned means the subject passed the sampling gate
	// and received a live variant.
	ResolveOutcomeAssigned = "assigned"

	// ResolveOutcomeNotSampled means the subject's bucket value fell
	// outside the sampling rate.
	ResolveOutcomeNotSampled = "not_sampled"

	// ResolveOutcomeInactive means the experiment was paused or completed.
	ResolveOutcomeInactive = "inactive"

	// ResolveOutcomeNotFound means the experiment key was absent from
	// the current snapshot.
	ResolveOutcomeNotFound = "not_found"
)

// ResolverMetrics defines metrics for assignment resolution.
type ResolverMetrics interface {
	// RecordResolve records the outcome of a resolve call.
	//
	// Parameters:
	//   - experimentKey: Experiment the resolve targeted
	//   - outcome: One of the ResolveOutcome* labels
	RecordResolve(experimentKey, outcome string)

	// RecordVariantAssignment records a live variant assignment.
	//
	// Parameters:
	//   - experimentKey: Experiment the subject was assigned in
	//   - variant: Assigned variant name
	RecordVariantAssignment(experimentKey, variant string)
}

// StoreMetrics defines metrics for configuration snapshot publishing.
type StoreMetrics interface {
	// RecordPublish records a publish attempt (success or validation failure).
	RecordPublish(success bool)

	// SetExperimentCount sets the number of experiments in the current
	// snapshot (gauge metric).
	SetExperimentCount(count int)

	// SetSnapshotVersion sets the current snapshot version (gauge metric).
	SetSnapshotVersion(version uint64)
}

// RecorderMetrics defines metrics for assignment recording.
type RecorderMetrics interface {
	// RecordRecordAttempt records a recording attempt (success or failure).
	RecordRecordAttempt(success bool)

	// RecordRecordDuration records the time taken by a recording operation.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordRecordDuration(duration float64)

	// RecordFirstExposure records a first-time recorded exposure for an experiment.
	RecordFirstExposure(experimentKey string)
}
