// Package testing provides test utilities for the Sortition library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for KV recorder and source tests. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: types.Logger writing to testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    sortitiontest "github.com/arloliu/sortition/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := sortitiontest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
