// Package recorder provides built-in assignment recorder implementations.
//
// Recorders persist the first computed assignment per (subject, experiment)
// pair with insert-if-absent semantics. The package includes:
//
//   - Memory: In-process concurrent map, for tests and single-instance use
//   - KV: NATS JetStream KeyValue bucket, for durable multi-instance recording
//
// Custom recorders can be implemented by satisfying the types.Recorder interface.
package recorder
