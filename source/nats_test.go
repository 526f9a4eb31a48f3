package source

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sortitiontest "github.com/arloliu/sortition/testing"
	"github.com/arloliu/sortition/types"
)

func newKVSource(t *testing.T) *KV {
	t.Helper()

	_, nc := sortitiontest.StartEmbeddedNATS(t)
	_, kv := sortitiontest.CreateJetStreamKV(t, nc, "test-experiments")

	src, err := NewKVWithBucket(kv, nil)
	require.NoError(t, err)

	return src
}

func TestNewKVSourceValidation(t *testing.T) {
	_, err := NewKVWithBucket(nil, nil)
	require.ErrorIs(t, err, types.ErrKVBucketRequired)

	_, err = NewKV(context.Background(), nil, "bucket", nil)
	require.ErrorIs(t, err, types.ErrKVBucketRequired)
}

func TestKVSourceEmptyBucket(t *testing.T) {
	src := newKVSource(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := src.ListExperiments(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestKVSourcePutListDelete(t *testing.T) {
	src := newKVSource(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, exp := range sampleExperiments() {
		require.NoError(t, src.Put(ctx, exp))
	}

	got, err := src.ListExperiments(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, sampleExperiments(), got)

	require.NoError(t, src.Delete(ctx, "checkout.flow"))

	got, err = src.ListExperiments(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "inv.strategy", got[0].Key)
}

func TestKVSourcePutRejectsInvalid(t *testing.T) {
	src := newKVSource(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bad := sampleExperiments()[0]
	bad.Variants = nil
	require.ErrorIs(t, src.Put(ctx, bad), types.ErrNoVariants)

	got, err := src.ListExperiments(ctx)
	require.NoError(t, err)
	require.Empty(t, got, "invalid experiment must not reach the bucket")
}

func TestKVSourceWatch(t *testing.T) {
	src := newKVSource(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	putCtx, putCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer putCancel()

	// Seed one experiment before the watch; the initial replay must not
	// fire the callback.
	require.NoError(t, src.Put(putCtx, sampleExperiments()[0]))

	var fired atomic.Int32
	require.NoError(t, src.Watch(ctx, func(context.Context) {
		fired.Add(1)
	}))

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load(), "initial replay must not look like a change")

	require.NoError(t, src.Put(putCtx, sampleExperiments()[1]))

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond, "bucket change did not trigger the watch callback")
}
