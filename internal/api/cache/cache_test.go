package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*AccessTokenCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client), mr
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, "token-a", time.Minute))

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrMiss)
}

func TestOverwriteRevokesPrevious(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, "token-a", time.Minute))
	require.NoError(t, c.Set(ctx, 7, "token-b", time.Minute))

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, "token-a", time.Minute))
	require.NoError(t, c.Delete(ctx, 7))

	_, err := c.Get(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
}

func TestEntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 7, "token-a", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, 7)
	require.ErrorIs(t, err, ErrMiss)
}

func TestSessionsAreIndependent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 1, "token-a", time.Minute))
	require.NoError(t, c.Set(ctx, 2, "token-b", time.Minute))
	require.NoError(t, c.Delete(ctx, 1))

	got, err := c.Get(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}
