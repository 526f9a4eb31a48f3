// Package source provides built-in experiment source implementations.
//
// Experiment sources discover experiment configurations for publishing.
// The package includes:
//
//   - Static: Fixed list of experiments
//   - File: YAML definition file, with optional fsnotify-based hot reload
//   - KV: NATS JetStream KeyValue bucket populated by admin tooling,
//     with optional watch-based hot reload
//
// Sources return the complete configuration set; the engine publishes it
// as one atomic snapshot, so partially-applied reloads are impossible.
// Custom sources can be implemented by satisfying the
// types.ExperimentSource interface.
package source
