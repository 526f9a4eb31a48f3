package source

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sortition/types"
)

const experimentYAML = `
experiments:
  - key: inv.strategy
    name: Inventory reservation strategy
    variants: [optimistic, pessimistic]
    sampling: 1.0
    status: active
  - key: checkout.flow
    name: Checkout flow
    variants: [classic, express]
    sampling: 0.25
    status: paused
`

func writeExperimentFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "experiments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFileListExperiments(t *testing.T) {
	path := writeExperimentFile(t, t.TempDir(), experimentYAML)
	src := NewFile(path, nil)

	got, err := src.ListExperiments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "inv.strategy", got[0].Key)
	require.Equal(t, []string{"optimistic", "pessimistic"}, got[0].Variants)
	require.Equal(t, 1.0, got[0].Sampling)
	require.Equal(t, types.StatusActive, got[0].Status)

	require.Equal(t, "checkout.flow", got[1].Key)
	require.Equal(t, 0.25, got[1].Sampling)
	require.Equal(t, types.StatusPaused, got[1].Status)
}

func TestFileListExperimentsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		src := NewFile(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		_, err := src.ListExperiments(context.Background())
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeExperimentFile(t, t.TempDir(), "experiments: [not: {valid")
		src := NewFile(path, nil)
		_, err := src.ListExperiments(context.Background())
		require.Error(t, err)
	})
}

func TestFileWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, experimentYAML)
	src := NewFile(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	require.NoError(t, src.Watch(ctx, func(context.Context) {
		fired.Add(1)
	}))

	// Give the watcher a moment to establish before mutating the file.
	time.Sleep(50 * time.Millisecond)

	writeExperimentFile(t, dir, experimentYAML+`
  - key: extra
    variants: [enabled, disabled]
    sampling: 0.1
    status: active
`)

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond, "file change did not trigger the watch callback")
}

func TestFileWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeExperimentFile(t, dir, experimentYAML)
	src := NewFile(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fired atomic.Int32
	require.NoError(t, src.Watch(ctx, func(context.Context) {
		fired.Add(1)
	}))

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o600))

	// The sibling write must not fire the callback.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load())
}
