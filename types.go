package lessor

import "github.com/arloliu/lessor/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `lessor` package, while
// still providing a convenient `lessor.Logger`, `lessor.EvictionSink`, etc.
// for users.
type (
	OwnershipSource  = types.OwnershipSource
	EvictionSink     = types.EvictionSink
	EvictionSinkFunc = types.EvictionSinkFunc
	Scheduler        = types.Scheduler
	Task             = types.Task
	TimerHandle      = types.TimerHandle
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)
