package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/sortition/internal/kvutil"
	"github.com/arloliu/sortition/types"
)

// KV implements a durable assignment recorder backed by a NATS JetStream
// KeyValue bucket.
//
// The insert-if-absent guarantee comes from the KV Create operation, which
// atomically fails with ErrKeyExists when a record is already present.
// Under concurrent first-time calls from multiple application instances,
// exactly one Create wins; the losers read back the winning record, so
// every caller observes the same stored value.
type KV struct {
	kv jetstream.KeyValue
}

// Compile-time assertion that KV implements Recorder.
var _ types.Recorder = (*KV)(nil)

// kvRecord is the stored representation of a recorded assignment.
type kvRecord struct {
	SubjectKey string           `json:"subjectKey"`
	Assignment types.Assignment `json:"assignment"`
	RecordedAt time.Time        `json:"recordedAt"`
}

// NewKV creates a KV recorder, creating or opening the backing bucket.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: KV bucket name (e.g., Config.KVBuckets.AssignmentBucket)
//   - ttl: Record TTL (0 = records never expire; recommended for audit data)
//
// Returns:
//   - *KV: Recorder backed by the bucket
//   - error: Bucket creation/open failure
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	rec, err := recorder.NewKV(ctx, js, "sortition-assignments", 0)
//	if err != nil { /* handle */ }
//	eng, err := sortition.NewEngine(&cfg, sortition.WithRecorder(rec))
func NewKV(ctx context.Context, js jetstream.JetStream, bucket string, ttl time.Duration) (*KV, error) {
	if js == nil {
		return nil, types.ErrKVBucketRequired
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure assignment bucket: %w", err)
	}

	return &KV{kv: kv}, nil
}

// NewKVWithBucket creates a KV recorder over an existing bucket handle.
//
// Parameters:
//   - kv: JetStream KeyValue bucket
//
// Returns:
//   - *KV: Recorder backed by the bucket
//   - error: types.ErrKVBucketRequired if kv is nil
func NewKVWithBucket(kv jetstream.KeyValue) (*KV, error) {
	if kv == nil {
		return nil, types.ErrKVBucketRequired
	}

	return &KV{kv: kv}, nil
}

// RecordIfAbsent stores the assignment unless a record already exists.
//
// Uses KV Create for the atomic insert. When the key already exists the
// stored record is read back and returned, preserving the sticky
// first-exposure value.
//
// Parameters:
//   - ctx: Context for timeout/cancellation of the KV operations
//   - subjectKey: Stable subject identifier
//   - assignment: Assignment computed by the resolver
//
// Returns:
//   - types.Assignment: The stored assignment (existing record wins)
//   - bool: true if this call created the record
//   - error: Wrapped types.ErrRecordFailed on KV failure
func (k *KV) RecordIfAbsent(ctx context.Context, subjectKey string, assignment types.Assignment) (types.Assignment, bool, error) {
	key := recordKey(subjectKey, assignment.ExperimentKey)

	data, err := json.Marshal(kvRecord{
		SubjectKey: subjectKey,
		Assignment: assignment,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return types.Assignment{}, false, fmt.Errorf("%w: marshal: %w", types.ErrRecordFailed, err)
	}

	_, err = k.kv.Create(ctx, key, data)
	if err == nil {
		return assignment, true, nil
	}

	if !errors.Is(err, jetstream.ErrKeyExists) {
		return types.Assignment{}, false, fmt.Errorf("%w: create %q: %w", types.ErrRecordFailed, key, err)
	}

	// Lost the race (or recorded earlier); the stored record is authoritative.
	entry, err := k.kv.Get(ctx, key)
	if err != nil {
		return types.Assignment{}, false, fmt.Errorf("%w: get existing %q: %w", types.ErrRecordFailed, key, err)
	}

	var rec kvRecord
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return types.Assignment{}, false, fmt.Errorf("%w: decode existing %q: %w", types.ErrRecordFailed, key, err)
	}

	return rec.Assignment, false, nil
}

// Get returns the recorded assignment for a (subject, experiment) pair.
//
// Parameters:
//   - ctx: Context for the KV read
//   - subjectKey: Stable subject identifier
//   - experimentKey: Experiment key
//
// Returns:
//   - types.Assignment: The recorded assignment (zero value if absent)
//   - bool: true if a record exists
//   - error: KV read or decode failure (not-found is not an error)
func (k *KV) Get(ctx context.Context, subjectKey, experimentKey string) (types.Assignment, bool, error) {
	entry, err := k.kv.Get(ctx, recordKey(subjectKey, experimentKey))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return types.Assignment{}, false, nil
		}

		return types.Assignment{}, false, fmt.Errorf("failed to read assignment record: %w", err)
	}

	var rec kvRecord
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		return types.Assignment{}, false, fmt.Errorf("failed to decode assignment record: %w", err)
	}

	return rec.Assignment, true, nil
}

// recordKey builds the KV key "<experiment>.<subject>" for a pair.
//
// Grouping by experiment first keeps per-experiment records adjacent for
// WatchAll consumers and ListKeys-based exports.
func recordKey(subjectKey, experimentKey string) string {
	return sanitizeKey(experimentKey) + "." + sanitizeKey(subjectKey)
}

// sanitizeKey maps an arbitrary identifier onto the KV key alphabet.
//
// JetStream KV keys permit [A-Za-z0-9-_/=.]; anything else becomes '_'.
// Dots are replaced too so a sanitized component can never inject a key
// hierarchy level. Callers using identifiers that differ only in
// disallowed characters should pre-encode them (e.g., hex) before use.
func sanitizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
