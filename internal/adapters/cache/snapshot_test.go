package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, time.Hour)
}

func TestRedisStore_SaveLoad(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()
	key := Key("owner-hash", "patients")

	require.NoError(t, store.Save(ctx, key, []byte(`{"rows":["a"]}`)))

	data, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":["a"]}`, string(data))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisStore_MissAndExpiry(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, Key("nobody", "roles"))
	assert.ErrorIs(t, err, ErrMiss)

	key := Key("owner", "roles")
	require.NoError(t, store.Save(ctx, key, []byte("x")))
	mr.FastForward(2 * time.Hour)

	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_Delete(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()
	a, b := Key("owner", "patients"), Key("owner", "services")
	require.NoError(t, store.Save(ctx, a, []byte("a")))
	require.NoError(t, store.Save(ctx, b, []byte("b")))

	require.NoError(t, store.Delete(ctx, a, b))
	require.NoError(t, store.Delete(ctx))

	_, err := store.Load(ctx, a)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Load(ctx, b)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	buf := []byte("page")
	require.NoError(t, store.Save(ctx, "k", buf))
	buf[0] = 'X'

	data, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "page", string(data))

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, store := setupRedisStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
