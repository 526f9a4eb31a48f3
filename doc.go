// Package sortition provides a Go library for deterministic experiment
// assignment (A/B bucketing) with atomic configuration snapshots and
// idempotent exposure recording.
//
// Sortition assigns each subject (a user, session, or device) to a variant
// of a named experiment without storing a lookup table: the assignment is
// computed on demand from a stable hash of the subject and experiment keys,
// so the same subject always receives the same variant for a given
// published configuration.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/arloliu/sortition"
//
//	cfg := sortition.DefaultConfig()
//	eng, err := sortition.NewEngine(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = eng.Publish(ctx, []sortition.Experiment{{
//	    Key:      "inv.strategy",
//	    Name:     "Inventory reservation strategy",
//	    Variants: []string{"optimistic", "pessimistic"},
//	    Sampling: 1.0,
//	    Status:   sortition.StatusActive,
//	}})
//
//	assignment, err := eng.Resolve("user-42", "inv.strategy")
//	if assignment.InExperiment {
//	    useStrategy(assignment.Variant)
//	}
//
// # Key Features
//
//   - Deterministic Bucketing: XXH3-based hashing maps (subject, experiment)
//     pairs to variants; identical inputs yield identical assignments across
//     calls and process restarts
//   - Atomic Hot Reload: configuration snapshots swap with a single pointer
//     store; readers never block and never observe a partial configuration
//   - Sampling Gate: each experiment samples a configurable fraction of
//     subjects, with the variant split kept uniform among participants
//   - Idempotent Recording: first exposures persist exactly once per
//     (subject, experiment) pair, in memory or in NATS JetStream KV
//   - Pluggable Sources: static lists, YAML files with fsnotify hot reload,
//     or a watched JetStream KV bucket
//
// # Architecture
//
// The engine composes three parts:
//
//	ExperimentSource → Store (immutable snapshot) → Resolve → Recorder
//
// Resolution is a pure in-memory read; recording is a decoupled,
// best-effort write that feature code triggers when an exposure officially
// occurs.
//
// # Advanced Usage
//
// Recording to NATS JetStream KV with hooks:
//
//	import (
//	    "github.com/arloliu/sortition"
//	    "github.com/arloliu/sortition/recorder"
//	)
//
//	rec, err := recorder.NewKV(ctx, js, cfg.KVBuckets.AssignmentBucket, cfg.KVBuckets.AssignmentTTL)
//
//	hooks := &sortition.Hooks{
//	    OnFirstExposure: func(ctx context.Context, subject string, a sortition.Assignment) {
//	        // Forward to analytics
//	    },
//	}
//
//	eng, err := sortition.NewEngine(&cfg,
//	    sortition.WithRecorder(rec),
//	    sortition.WithHooks(hooks),
//	)
//
// See the examples/ directory for complete working examples.
package sortition
