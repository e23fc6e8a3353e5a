// Package types provides core type definitions and interfaces for the lessor library.
//
// This package contains shared types that are used across multiple packages in the
// lessor library. By keeping these types in a separate package, we avoid import cycles
// between the main lessor package and its internal implementations.
//
// Key types:
//   - OwnershipSource: Reports which connections own registered data
//   - EvictionSink: Consumes disconnect notifications for expired leases
//   - Scheduler, Task, TimerHandle: Delayed-task scheduling contracts
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
