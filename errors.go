package lessor

import "errors"

// Sentinel errors returned by the Manager.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOwnershipSourceRequired is returned when the ownership source is nil.
	ErrOwnershipSourceRequired = errors.New("ownership source is required")

	// ErrEvictionSinkRequired is returned when the eviction sink is nil.
	ErrEvictionSinkRequired = errors.New("eviction sink is required")

	// ErrAlreadyStarted is returned when Start is called on an already running manager.
	ErrAlreadyStarted = errors.New("manager already started")

	// ErrNotStarted is returned when Stop is called on a manager that hasn't been started.
	ErrNotStarted = errors.New("manager not started")

	// ErrInvalidTTL is returned when a lease TTL is shorter than one second.
	ErrInvalidTTL = errors.New("ttl must be at least one second")
)
