package sortition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 5*time.Second, cfg.OperationTimeout)
	require.Equal(t, "sortition-assignments", cfg.KVBuckets.AssignmentBucket)
	require.Equal(t, "sortition-experiments", cfg.KVBuckets.ExperimentBucket)
	require.Equal(t, time.Duration(0), cfg.KVBuckets.AssignmentTTL)
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, 5*time.Second, cfg.OperationTimeout)
		require.Equal(t, "sortition-assignments", cfg.KVBuckets.AssignmentBucket)
		require.Equal(t, "sortition-experiments", cfg.KVBuckets.ExperimentBucket)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{
			OperationTimeout: 2 * time.Second,
			KVBuckets: KVBucketConfig{
				AssignmentBucket: "custom-assignments",
				ExperimentBucket: "custom-experiments",
				AssignmentTTL:    time.Hour,
			},
		}
		SetDefaults(&cfg)

		require.Equal(t, 2*time.Second, cfg.OperationTimeout)
		require.Equal(t, "custom-assignments", cfg.KVBuckets.AssignmentBucket)
		require.Equal(t, "custom-experiments", cfg.KVBuckets.ExperimentBucket)
		require.Equal(t, time.Hour, cfg.KVBuckets.AssignmentTTL)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("accepts defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects non-positive operation timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OperationTimeout = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects negative assignment TTL", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.KVBuckets.AssignmentTTL = -time.Second
		require.Error(t, cfg.Validate())
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.Equal(t, 500*time.Millisecond, cfg.OperationTimeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	src := `
operationTimeout: 3s
kvBuckets:
  assignmentBucket: ab-assignments
  experimentBucket: ab-experiments
  assignmentTtl: 1h
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))

	require.Equal(t, 3*time.Second, cfg.OperationTimeout)
	require.Equal(t, "ab-assignments", cfg.KVBuckets.AssignmentBucket)
	require.Equal(t, "ab-experiments", cfg.KVBuckets.ExperimentBucket)
	require.Equal(t, time.Hour, cfg.KVBuckets.AssignmentTTL)
}
