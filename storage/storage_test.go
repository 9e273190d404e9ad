package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redisMod "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/flashbots/backdrop/config"
)

func testKV(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1")))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, kv.Set(ctx, "k", []byte("v2")))
	v, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is fine
	assert.NoError(t, kv.Delete(ctx, "k"))
}

func TestMemory(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()

	testKV(t, kv)

	t.Run("returned values are copies", func(t *testing.T) {
		ctx := context.Background()
		value := []byte("abc")
		require.NoError(t, kv.Set(ctx, "copy", value))
		value[0] = 'x'

		got, err := kv.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})
}

func TestBadger(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		kv, err := NewBadger(&config.StorageBadger{InMemory: true})
		require.NoError(t, err)
		defer kv.Close()

		testKV(t, kv)
	})

	t.Run("on disk survives reopen", func(t *testing.T) {
		ctx := context.Background()
		cfg := &config.StorageBadger{Dir: t.TempDir()}

		kv, err := NewBadger(cfg)
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, "k", []byte("persisted")))
		require.NoError(t, kv.Close())

		kv, err = NewBadger(cfg)
		require.NoError(t, err)
		defer kv.Close()

		v, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "persisted", string(v))
	})
}

func TestRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := redisMod.Run(ctx, "redis:7.4")
	require.NoError(t, err)
	defer func() {
		_ = container.Terminate(ctx)
	}()

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	kv, err := NewRedis(ctx, &config.StorageRedis{
		Addrs: []string{strings.TrimPrefix(endpoint, "redis://")},
	})
	require.NoError(t, err)
	defer kv.Close()

	testKV(t, kv)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, &config.Storage{Driver: config.StorageDriverNone})
	require.NoError(t, err)
	assert.Nil(t, kv)

	kv, err = Open(ctx, &config.Storage{Driver: config.StorageDriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(ctx, &config.Storage{
		Driver: config.StorageDriverBadger,
		Badger: config.StorageBadger{InMemory: true},
	})
	require.NoError(t, err)
	assert.IsType(t, &Badger{}, kv)
	assert.NoError(t, kv.Close())

	_, err = Open(ctx, &config.Storage{Driver: "etcd"})
	assert.ErrorIs(t, err, ErrStorageFailedToOpen)
}
