package kvutil

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	sortitiontest "github.com/arloliu/sortition/testing"
)

func TestEnsureBucket(t *testing.T) {
	_, nc := sortitiontest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("creates new bucket", func(t *testing.T) {
		kv, err := EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "ensure-new"}, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
	})

	t.Run("opens existing bucket", func(t *testing.T) {
		first, err := EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "ensure-existing"}, 3)
		require.NoError(t, err)

		_, err = first.Put(ctx, "marker", []byte("1"))
		require.NoError(t, err)

		second, err := EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: "ensure-existing"}, 3)
		require.NoError(t, err)

		entry, err := second.Get(ctx, "marker")
		require.NoError(t, err)
		require.Equal(t, []byte("1"), entry.Value())
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancelNow := context.WithCancel(context.Background())
		cancelNow()

		_, err := EnsureBucket(cancelled, js, jetstream.KeyValueConfig{Bucket: "ensure-cancelled"}, 3)
		require.Error(t, err)
	})
}
