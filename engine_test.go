package sortition

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sortition/recorder"
	"github.com/arloliu/sortition/source"
	"github.com/arloliu/sortition/types"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	cfg := TestConfig()
	eng, err := NewEngine(&cfg, opts...)
	require.NoError(t, err)

	return eng
}

func publishTestExperiments(t *testing.T, eng *Engine) {
	t.Helper()
	require.NoError(t, eng.Publish(context.Background(), testExperiments()))
}

func TestNewEngine(t *testing.T) {
	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewEngine(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("applies defaults to zero config", func(t *testing.T) {
		cfg := Config{}
		eng, err := NewEngine(&cfg)
		require.NoError(t, err)
		require.NotNil(t, eng)
		require.Equal(t, DefaultConfig().OperationTimeout, cfg.OperationTimeout)
	})

	t.Run("starts with empty snapshot", func(t *testing.T) {
		eng := newTestEngine(t)
		require.Equal(t, uint64(0), eng.SnapshotVersion())
		require.Equal(t, 0, eng.ExperimentCount())
	})
}

func TestResolveDeterminism(t *testing.T) {
	eng := newTestEngine(t)
	publishTestExperiments(t, eng)

	first, err := eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)
	require.True(t, first.InExperiment)
	require.Contains(t, []string{"optimistic", "pessimistic"}, first.Variant)

	for range 1000 {
		got, err := eng.Resolve("user-42", "inv.strategy")
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}

func TestResolveDeterministicAcrossInstances(t *testing.T) {
	// Assignment is a pure function of the inputs and the published
	// config; two independent engines (standing in for process restarts)
	// must agree on every subject.
	engA := newTestEngine(t)
	engB := newTestEngine(t)
	publishTestExperiments(t, engA)
	publishTestExperiments(t, engB)

	for i := range 1000 {
		subject := fmt.Sprintf("subject-%d", i)

		a, err := engA.Resolve(subject, "checkout.flow")
		require.NoError(t, err)
		b, err := engB.Resolve(subject, "checkout.flow")
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestResolveUnknownExperiment(t *testing.T) {
	eng := newTestEngine(t)
	publishTestExperiments(t, eng)

	_, err := eng.Resolve("user-42", "nope")
	require.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestResolveStatusGating(t *testing.T) {
	for _, status := range []types.Status{types.StatusPaused, types.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			eng := newTestEngine(t)
			require.NoError(t, eng.Publish(context.Background(), []types.Experiment{{
				Key:      "gated",
				Variants: []string{"a", "b"},
				Sampling: 1.0,
				Status:   status,
			}}))

			for i := range 100 {
				got, err := eng.Resolve(fmt.Sprintf("subject-%d", i), "gated")
				require.NoError(t, err)
				require.False(t, got.InExperiment)
				require.Equal(t, types.VariantNone, got.Variant)
				require.Equal(t, "gated", got.ExperimentKey)
			}
		})
	}
}

func TestResolveZeroSampling(t *testing.T) {
	eng := newTestEngine(t)
	require.NoError(t, eng.Publish(context.Background(), []types.Experiment{{
		Key:      "dark",
		Variants: []string{"a"},
		Sampling: 0.0,
		Status:   types.StatusActive,
	}}))

	for i := range 100 {
		got, err := eng.Resolve(fmt.Sprintf("subject-%d", i), "dark")
		require.NoError(t, err)
		require.False(t, got.InExperiment)
	}
}

func TestResolveSamplingAccuracy(t *testing.T) {
	const n = 100000

	eng := newTestEngine(t)
	require.NoError(t, eng.Publish(context.Background(), []types.Experiment{{
		Key:      "half",
		Variants: []string{"a", "b"},
		Sampling: 0.5,
		Status:   types.StatusActive,
	}}))

	in := 0
	for i := range n {
		got, err := eng.Resolve(fmt.Sprintf("subject-%d", i), "half")
		require.NoError(t, err)
		if got.InExperiment {
			in++
		}
	}

	require.InDelta(t, 0.5, float64(in)/float64(n), 0.02)
}

func TestResolveVariantBalance(t *testing.T) {
	const n = 100000

	eng := newTestEngine(t)
	require.NoError(t, eng.Publish(context.Background(), []types.Experiment{{
		Key:      "balance",
		Variants: []string{"a", "b", "c"},
		Sampling: 0.6,
		Status:   types.StatusActive,
	}}))

	counts := map[string]int{}
	participants := 0
	for i := range n {
		got, err := eng.Resolve(fmt.Sprintf("subject-%d", i), "balance")
		require.NoError(t, err)
		if got.InExperiment {
			counts[got.Variant]++
			participants++
		}
	}

	require.Len(t, counts, 3)
	for variant, count := range counts {
		require.InDelta(t, 1.0/3.0, float64(count)/float64(participants), 0.02,
			"variant %s is out of balance", variant)
	}
}

func TestSamplingShrinkOnlyRemovesSubjects(t *testing.T) {
	// Subjects inside the experiment at a smaller sampling rate must also
	// be inside at a larger one: the gate is a prefix of [0,1).
	const n = 20000

	wide := newTestEngine(t)
	narrow := newTestEngine(t)

	exp := types.Experiment{
		Key:      "gate",
		Variants: []string{"a", "b"},
		Sampling: 1.0,
		Status:   types.StatusActive,
	}
	require.NoError(t, wide.Publish(context.Background(), []types.Experiment{exp}))

	exp.Sampling = 0.3
	require.NoError(t, narrow.Publish(context.Background(), []types.Experiment{exp}))

	for i := range n {
		subject := fmt.Sprintf("subject-%d", i)

		narrowGot, err := narrow.Resolve(subject, "gate")
		require.NoError(t, err)
		if !narrowGot.InExperiment {
			continue
		}

		wideGot, err := wide.Resolve(subject, "gate")
		require.NoError(t, err)
		require.True(t, wideGot.InExperiment,
			"subject %s participates at 0.3 sampling but not at 1.0", subject)
	}
}

func TestPublishHotReloadChangesResolution(t *testing.T) {
	eng := newTestEngine(t)
	publishTestExperiments(t, eng)

	got, err := eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)
	require.True(t, got.InExperiment)

	// Pause the experiment in a new snapshot.
	exps := testExperiments()
	exps[0].Status = types.StatusPaused
	require.NoError(t, eng.Publish(context.Background(), exps))

	got, err = eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)
	require.False(t, got.InExperiment)
}

func TestRecordWithoutRecorder(t *testing.T) {
	eng := newTestEngine(t)
	publishTestExperiments(t, eng)

	assignment, err := eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)

	stored := eng.Record(context.Background(), "user-42", assignment)
	require.Equal(t, assignment, stored)
}

func TestRecordStickyAcrossConfigChange(t *testing.T) {
	rec := recorder.NewMemory()
	eng := newTestEngine(t, WithRecorder(rec))
	publishTestExperiments(t, eng)

	original, err := eng.ResolveAndRecord(context.Background(), "user-42", "inv.strategy")
	require.NoError(t, err)
	require.True(t, original.InExperiment)

	// Reverse the variant order; fresh computations flip for subjects at
	// unchanged bucket positions, but the recorded view must not move.
	exps := testExperiments()
	exps[0].Variants = []string{"pessimistic", "optimistic"}
	require.NoError(t, eng.Publish(context.Background(), exps))

	recomputed, err := eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)
	require.NotEqual(t, original.Variant, recomputed.Variant)

	stored := eng.Record(context.Background(), "user-42", recomputed)
	require.Equal(t, original, stored, "recorded assignment must stay sticky")
}

func TestResolveAndRecord(t *testing.T) {
	rec := recorder.NewMemory()
	eng := newTestEngine(t, WithRecorder(rec))
	publishTestExperiments(t, eng)

	got, err := eng.ResolveAndRecord(context.Background(), "user-42", "inv.strategy")
	require.NoError(t, err)
	require.True(t, got.InExperiment)

	stored, ok := rec.Get("user-42", "inv.strategy")
	require.True(t, ok)
	require.Equal(t, got, stored)

	_, err = eng.ResolveAndRecord(context.Background(), "user-42", "nope")
	require.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestEngineHooks(t *testing.T) {
	var (
		publishedVersions []uint64
		exposures         []types.Assignment
	)

	hooks := &types.Hooks{
		OnSnapshotPublished: func(_ context.Context, version uint64, _ int) {
			publishedVersions = append(publishedVersions, version)
		},
		OnFirstExposure: func(_ context.Context, _ string, a types.Assignment) {
			exposures = append(exposures, a)
		},
	}

	eng := newTestEngine(t, WithRecorder(recorder.NewMemory()), WithHooks(hooks))
	publishTestExperiments(t, eng)
	require.Equal(t, []uint64{1}, publishedVersions)

	assignment, err := eng.Resolve("user-42", "inv.strategy")
	require.NoError(t, err)

	eng.Record(context.Background(), "user-42", assignment)
	eng.Record(context.Background(), "user-42", assignment)

	require.Len(t, exposures, 1, "only the first recorded exposure fires the hook")
	require.Equal(t, assignment, exposures[0])
}

func TestLoadFromSource(t *testing.T) {
	t.Run("publishes listed experiments", func(t *testing.T) {
		eng := newTestEngine(t)
		src := source.NewStatic(testExperiments())

		require.NoError(t, eng.LoadFromSource(context.Background(), src))
		require.Equal(t, 2, eng.ExperimentCount())

		src.Update(testExperiments()[:1])
		require.NoError(t, eng.LoadFromSource(context.Background(), src))
		require.Equal(t, 1, eng.ExperimentCount())
	})

	t.Run("rejects nil source", func(t *testing.T) {
		eng := newTestEngine(t)
		require.ErrorIs(t, eng.LoadFromSource(context.Background(), nil), ErrSourceRequired)
	})

	t.Run("invalid experiments keep previous snapshot", func(t *testing.T) {
		eng := newTestEngine(t)
		require.NoError(t, eng.LoadFromSource(context.Background(), source.NewStatic(testExperiments())))

		bad := testExperiments()
		bad[0].Variants = nil
		err := eng.LoadFromSource(context.Background(), source.NewStatic(bad))
		require.Error(t, err)
		require.True(t, errors.Is(err, types.ErrNoVariants))
		require.Equal(t, 2, eng.ExperimentCount())
	})
}
