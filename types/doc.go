// Package types provides core type definitions and interfaces for the Sortition library.
//
// This package contains shared types that are used across multiple packages in the
// Sortition library. By keeping these types in a separate package, we avoid import
// cycles between the main sortition package and its internal implementations.
//
// Key types:
//   - Experiment: Published experiment configuration
//   - Assignment: Computed subject-to-variant assignment
//   - Status: Experiment lifecycle status
//   - Recorder: Idempotent assignment persistence interface
//   - ExperimentSource: Experiment configuration discovery interface
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
