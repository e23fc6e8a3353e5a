package lessor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/lessor/internal/wheel"
)

// SchedulerConfig controls the hashed wheel timer that fires expiry checks.
type SchedulerConfig struct {
	// Tick is the wheel advance interval. Expiry-check delays round up to a
	// multiple of Tick, so Tick bounds how late a check can fire.
	// Recommended: 100ms.
	Tick time.Duration `yaml:"tick"`

	// WheelSize is the number of wheel buckets. Larger wheels spread pending
	// checks across more buckets, shortening per-tick work at the cost of
	// memory. Recommended: 1024.
	WheelSize int `yaml:"wheelSize"`

	// Workers is the number of goroutines executing fired expiry checks.
	// Checks are short, so a small pool is enough even for large fleets.
	// Recommended: 4.
	Workers int `yaml:"workers"`

	// QueueSize bounds the handoff queue between the wheel tick loop and
	// the workers. When the queue is full, a fired check is dropped and the
	// connection's next renewal re-arms it. Recommended: 1024.
	QueueSize int `yaml:"queueSize"`
}

// ============================================================================
// TTL Model
// ============================================================================
//
// A connection stays alive as long as renewals arrive more often than TTL:
//
//   - Each renewal stamps the connection with the current wall-clock time.
//   - The first renewal arms an expiry check TTL in the future; at most one
//     check is pending per connection at any time.
//   - A fired check evicts when now - lastRenewal > TTL, otherwise it
//     re-arms itself for the remaining window.
//   - Connections that own data but never renewed at all are caught by a
//     fallback sweep running every TTL.
//
// Expiry arithmetic is whole-second: remaining windows are computed as
// TTL_seconds - elapsed_seconds, floored at one second. TTLs below one
// second are therefore rejected.
//
// Renewal cadence guidance:
//
//	TTL >= 3 * renewal interval (allows two missed renewals)
//
// Example Valid Configurations:
//
//	// Production (default)
//	TTL: 30s, client renews every 10s
//
//	// Fast (testing)
//	TTL: 2s, client renews every 500ms
//
//	// Conservative (unstable network)
//	TTL: 90s, client renews every 20s
//
// ============================================================================

// Config is the configuration for the Manager.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// TTL is how long a lease stays valid after its last renewal. A
	// connection whose lease goes unrenewed for longer than TTL is evicted.
	// Must be at least one second. Recommended: 30 seconds.
	TTL time.Duration `yaml:"ttl"`

	// Scheduler controls the hashed wheel timer sizing.
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		TTL: 30 * time.Second,
		Scheduler: SchedulerConfig{
			Tick:      wheel.DefaultTick,
			WheelSize: wheel.DefaultWheelSize,
			Workers:   wheel.DefaultWorkers,
			QueueSize: wheel.DefaultQueueSize,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.TTL == 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.Scheduler.Tick == 0 {
		cfg.Scheduler.Tick = defaults.Scheduler.Tick
	}
	if cfg.Scheduler.WheelSize == 0 {
		cfg.Scheduler.WheelSize = defaults.Scheduler.WheelSize
	}
	if cfg.Scheduler.Workers == 0 {
		cfg.Scheduler.Workers = defaults.Scheduler.Workers
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = defaults.Scheduler.QueueSize
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - TTL >= 1s (expiry arithmetic is whole-second)
//   - Tick > 0 and Tick <= TTL (the wheel must be able to time a full TTL)
//   - WheelSize, Workers, QueueSize > 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	// Rule 1: TTL granularity
	if cfg.TTL < time.Second {
		return fmt.Errorf("%w: got %v", ErrInvalidTTL, cfg.TTL)
	}

	// Rule 2: Tick sanity
	if cfg.Scheduler.Tick <= 0 {
		return fmt.Errorf("scheduler Tick must be > 0, got %v", cfg.Scheduler.Tick)
	}
	if cfg.Scheduler.Tick > cfg.TTL {
		return fmt.Errorf(
			"scheduler Tick (%v) must be <= TTL (%v) to time expiry checks",
			cfg.Scheduler.Tick, cfg.TTL,
		)
	}

	// Rule 3: Pool sizing
	if cfg.Scheduler.WheelSize <= 0 {
		return fmt.Errorf("scheduler WheelSize must be > 0, got %d", cfg.Scheduler.WheelSize)
	}
	if cfg.Scheduler.Workers <= 0 {
		return fmt.Errorf("scheduler Workers must be > 0, got %d", cfg.Scheduler.Workers)
	}
	if cfg.Scheduler.QueueSize <= 0 {
		return fmt.Errorf("scheduler QueueSize must be > 0, got %d", cfg.Scheduler.QueueSize)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewManager() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Warn if TTL leaves little room for missed renewals
	if cfg.TTL < 5*time.Second {
		logger.Warn(
			"TTL is very short, transient renewal stalls may evict healthy connections",
			"ttl", cfg.TTL,
			"recommended", "5s or higher",
		)
	}

	// Warn if the tick is coarse relative to expiry accuracy expectations
	if cfg.Scheduler.Tick > time.Second {
		logger.Warn(
			"scheduler tick is coarse, expiry checks may fire noticeably late",
			"tick", cfg.Scheduler.Tick,
			"recommended", "100ms",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-30x faster than production defaults to enable
// rapid iteration without sacrificing test coverage. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := lessor.TestConfig()
//	mgr, err := lessor.NewManager(&cfg, source, sink)
func TestConfig() Config {
	cfg := DefaultConfig()

	// Fast timings for test execution; TTL stays at the 1s validation
	// floor times two so re-arm arithmetic still has room to work.
	cfg.TTL = 2 * time.Second                    // 15x faster
	cfg.Scheduler.Tick = 10 * time.Millisecond   // 10x faster
	cfg.Scheduler.WheelSize = 512
	cfg.Scheduler.Workers = 2
	cfg.Scheduler.QueueSize = 128

	return cfg
}

// LoadConfig loads configuration from a YAML file, applies defaults for
// missing fields and validates the result.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration ready to pass to NewManager
//   - error: Read, parse or validation error
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}
