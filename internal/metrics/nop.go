// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/sortition/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	collector := metrics.NewNop()
//	eng, err := sortition.NewEngine(&cfg, sortition.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ResolverMetrics implementation

// RecordResolve discards the resolve outcome metric.
func (n *NopMetrics) RecordResolve(_ /* experimentKey */, _ /* outcome */ string) {
	// No-op
}

// RecordVariantAssignment discards the variant assignment metric.
func (n *NopMetrics) RecordVariantAssignment(_ /* experimentKey */, _ /* variant */ string) {
	// No-op
}

// StoreMetrics implementation

// RecordPublish discards the publish attempt metric.
func (n *NopMetrics) RecordPublish(_ /* success */ bool) {
	// No-op
}

// SetExperimentCount discards the experiment count gauge.
func (n *NopMetrics) SetExperimentCount(_ /* count */ int) {
	// No-op
}

// SetSnapshotVersion discards the snapshot version gauge.
func (n *NopMetrics) SetSnapshotVersion(_ /* version */ uint64) {
	// No-op
}

// RecorderMetrics implementation

// RecordRecordAttempt discards the record attempt metric.
func (n *NopMetrics) RecordRecordAttempt(_ /* success */ bool) {
	// No-op
}

// RecordRecordDuration discards the record duration metric.
func (n *NopMetrics) RecordRecordDuration(_ /* duration */ float64) {
	// No-op
}

// RecordFirstExposure discards the first exposure metric.
func (n *NopMetrics) RecordFirstExposure(_ /* experimentKey */ string) {
	// No-op
}
