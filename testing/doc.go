// Package testing provides test utilities for the Lessor library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single in-process NATS server for sink testing
//   - NewTestLogger: Logger that writes through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    lessortest "github.com/arloliu/lessor/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := lessortest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
