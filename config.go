package sortition

import (
	"fmt"
	"time"
)

// KVBucketConfig configures NATS JetStream KV bucket names and TTLs.
//
// Only used when the engine is wired with the KV-backed recorder or the
// KV experiment source; in-memory deployments can ignore it.
type KVBucketConfig struct {
	// AssignmentBucket is the bucket name for recorded assignments.
	AssignmentBucket string `yaml:"assignmentBucket"`

	// ExperimentBucket is the bucket name experiment configurations are
	// published into by admin tooling.
	ExperimentBucket string `yaml:"experimentBucket"`

	// AssignmentTTL is how long recorded assignments remain in KV
	// (0 = no expiration). Recorded assignments back analytics and
	// audits, so the recommended value is 0.
	AssignmentTTL time.Duration `yaml:"assignmentTtl"`
}

// Config is the configuration for the Engine.
//
// All duration fields accept standard Go duration strings like "500ms", "5s".
type Config struct {
	// OperationTimeout bounds best-effort backing store operations:
	// assignment record writes and source listing during LoadFromSource.
	// Resolution itself is pure and in-memory and is never subject to a
	// timeout.
	// Recommended: 5 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// KVBuckets controls NATS JetStream KV bucket configuration.
	KVBuckets KVBucketConfig `yaml:"kvBuckets"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		OperationTimeout: 5 * time.Second,
		KVBuckets: KVBucketConfig{
			AssignmentBucket: "sortition-assignments",
			ExperimentBucket: "sortition-experiments",
			AssignmentTTL:    0, // No TTL - records persist for audit
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.KVBuckets.AssignmentBucket == "" {
		cfg.KVBuckets.AssignmentBucket = defaults.KVBuckets.AssignmentBucket
	}
	if cfg.KVBuckets.ExperimentBucket == "" {
		cfg.KVBuckets.ExperimentBucket = defaults.KVBuckets.ExperimentBucket
	}
	// Note: AssignmentTTL of 0 is valid (no expiration), so we don't apply a default
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Hard Validation Rules:
//   - OperationTimeout > 0 (best-effort writes must be bounded)
//   - AssignmentTTL >= 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("OperationTimeout must be > 0, got %v", cfg.OperationTimeout)
	}
	if cfg.KVBuckets.AssignmentTTL < 0 {
		return fmt.Errorf("AssignmentTTL must be >= 0, got %v", cfg.KVBuckets.AssignmentTTL)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := sortition.TestConfig()
//	eng, err := sortition.NewEngine(&cfg)
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.OperationTimeout = 500 * time.Millisecond

	return cfg
}
