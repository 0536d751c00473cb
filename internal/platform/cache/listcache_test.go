package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ListCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListCache(client, time.Minute)
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key("donations", map[string]string{"page": "1", "status": "pending", "search": "x"})
	b := Key("donations", map[string]string{"search": "x", "page": "1", "status": "pending"})
	assert.Equal(t, a, b)
}

func TestKeyDistinguishesParameterTuples(t *testing.T) {
	a := Key("donations", map[string]string{"page": "3", "search": ""})
	b := Key("donations", map[string]string{"page": "1", "search": "hospital"})
	assert.NotEqual(t, a, b)
}

func TestGetSetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key := Key("donations", map[string]string{"page": "1"})
	require.NoError(t, c.Set(ctx, key, []string{"a", "b"}))

	var got []string
	require.NoError(t, c.Get(ctx, key, &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)
	var got []string
	err := c.Get(context.Background(), "list:donations:none", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInvalidateResourceRemovesAllTuples(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	k1 := Key("donations", map[string]string{"page": "1"})
	k2 := Key("donations", map[string]string{"page": "2", "status": "pending"})
	other := Key("users", map[string]string{"page": "1"})
	require.NoError(t, c.Set(ctx, k1, "one"))
	require.NoError(t, c.Set(ctx, k2, "two"))
	require.NoError(t, c.Set(ctx, other, "keep"))

	require.NoError(t, c.InvalidateResource(ctx, "donations"))

	var s string
	assert.ErrorIs(t, c.Get(ctx, k1, &s), ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, k2, &s), ErrMiss)
	require.NoError(t, c.Get(ctx, other, &s))
	assert.Equal(t, "keep", s)
}
