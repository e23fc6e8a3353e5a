package testing

import (
	"testing"

	"github.com/arloliu/lessor/internal/logging"
	"github.com/arloliu/lessor/types"
)

// NewTestLogger returns a logger that writes through t, so manager output
// lands in the test log. Pair it with lessor.WithLogger when a
// timing-dependent test needs the renewal and eviction trail on failure.
func NewTestLogger(t *testing.T) types.Logger {
	return logging.NewTest(t)
}
