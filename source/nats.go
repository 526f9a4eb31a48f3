package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/sortition/internal/kvutil"
	"github.com/arloliu/sortition/internal/logging"
	"github.com/arloliu/sortition/types"
)

// KV implements an experiment source backed by a NATS JetStream KeyValue
// bucket.
//
// Admin tooling publishes one JSON-encoded experiment per key (keyed by
// experiment key) into the bucket. ListExperiments reads the complete
// bucket contents; Watch observes the bucket so configuration changes
// propagate to running instances without restarts.
type KV struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

var _ types.ExperimentSource = (*KV)(nil)

// NewKV creates a KV experiment source, creating or opening the bucket.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: KV bucket name (e.g., Config.KVBuckets.ExperimentBucket)
//   - logger: Logger for watch events (nop logger if nil)
//
// Returns:
//   - *KV: Source backed by the bucket
//   - error: Bucket creation/open failure
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	src, err := source.NewKV(ctx, js, "sortition-experiments", logger)
//	if err != nil { /* handle */ }
//	err = eng.LoadFromSource(ctx, src)
func NewKV(ctx context.Context, js jetstream.JetStream, bucket string, logger types.Logger) (*KV, error) {
	if js == nil {
		return nil, types.ErrKVBucketRequired
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: bucket}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure experiment bucket: %w", err)
	}

	return &KV{kv: kv, logger: logger}, nil
}

// NewKVWithBucket creates a KV experiment source over an existing bucket handle.
//
// Parameters:
//   - kv: JetStream KeyValue bucket
//   - logger: Logger for watch events (nop logger if nil)
//
// Returns:
//   - *KV: Source backed by the bucket
//   - error: types.ErrKVBucketRequired if kv is nil
func NewKVWithBucket(kv jetstream.KeyValue, logger types.Logger) (*KV, error) {
	if kv == nil {
		return nil, types.ErrKVBucketRequired
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &KV{kv: kv, logger: logger}, nil
}

// Put writes an experiment into the bucket, keyed by its experiment key.
//
// Intended for admin tooling and tests; running engines only read.
// The experiment is validated before writing so the bucket never holds a
// config that every consumer would reject at publish time.
//
// Parameters:
//   - ctx: Context for the KV write
//   - exp: Experiment to store
//
// Returns:
//   - error: Validation or KV write failure
func (s *KV) Put(ctx context.Context, exp types.Experiment) error {
	if err := exp.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to encode experiment %q: %w", exp.Key, err)
	}

	if _, err := s.kv.Put(ctx, exp.Key, data); err != nil {
		return fmt.Errorf("failed to store experiment %q: %w", exp.Key, err)
	}

	return nil
}

// Delete removes an experiment from the bucket.
//
// Parameters:
//   - ctx: Context for the KV delete
//   - key: Experiment key to remove
//
// Returns:
//   - error: KV delete failure
func (s *KV) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete experiment %q: %w", key, err)
	}

	return nil
}

// ListExperiments reads the complete experiment set from the bucket.
//
// An empty bucket is a valid empty configuration, not an error. Keys
// deleted between listing and reading are skipped.
//
// Returns:
//   - []types.Experiment: All experiments currently in the bucket
//   - error: KV listing, read, or decode failure
func (s *KV) ListExperiments(ctx context.Context) ([]types.Experiment, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []types.Experiment{}, nil
		}

		return nil, fmt.Errorf("failed to list experiment keys: %w", err)
	}
	defer lister.Stop() //nolint:errcheck // stop on a drained lister cannot fail meaningfully

	var experiments []types.Experiment
	for key := range lister.Keys() {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, fmt.Errorf("failed to read experiment %q: %w", key, err)
		}

		var exp types.Experiment
		if err := json.Unmarshal(entry.Value(), &exp); err != nil {
			return nil, fmt.Errorf("failed to decode experiment %q: %w", key, err)
		}

		experiments = append(experiments, exp)
	}

	if experiments == nil {
		experiments = []types.Experiment{}
	}

	return experiments, nil
}

// Watch invokes onChange whenever the bucket contents change.
//
// The initial replay of existing keys is consumed silently; only changes
// after the watch is established fire the callback. Rapid bursts are
// debounced so a bulk admin update triggers a single reload.
//
// The watch runs until ctx is cancelled. Only watcher setup failures are
// returned.
//
// Parameters:
//   - ctx: Context controlling the watch lifetime
//   - onChange: Callback fired after each (debounced) bucket change
//
// Returns:
//   - error: Wrapped types.ErrWatcherFailed on setup failure
func (s *KV) Watch(ctx context.Context, onChange func(ctx context.Context)) error {
	watcher, err := s.kv.WatchAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrWatcherFailed, err)
	}

	go s.watchLoop(ctx, watcher, onChange)

	return nil
}

// watchLoop consumes KV updates until the context is cancelled.
func (s *KV) watchLoop(ctx context.Context, watcher jetstream.KeyWatcher, onChange func(ctx context.Context)) {
	defer watcher.Stop() //nolint:errcheck // stopping an exhausted watcher cannot fail meaningfully

	// The watcher replays existing entries first and marks the end of the
	// replay with a nil entry. Replayed entries must not fire the callback,
	// otherwise every startup looks like a config change.
	replaying := true

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case entry, ok := <-watcher.Updates():
			if !ok {
				return
			}
			if entry == nil {
				replaying = false

				continue
			}
			if replaying {
				continue
			}

			s.logger.Debug("experiment bucket changed", "key", entry.Key(), "operation", entry.Operation().String())

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			onChange(ctx)
		}
	}
}
