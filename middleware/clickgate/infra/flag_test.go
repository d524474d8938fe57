package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorCtx(key string) context.Context {
	return domain.WithVisitor(context.Background(), domain.Key(key))
}

func TestMemoryFlagStore_SetGetAndExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryFlagStore(WithFlagClock(func() time.Time { return now }))
	ctx := visitorCtx("v1")

	_, ok, err := s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, domain.FlagName, domain.FlagValue, time.Hour))
	v, ok, err := s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok, "flag must expire exactly at ttl")
}

func TestMemoryFlagStore_ScopedByVisitor(t *testing.T) {
	s := NewMemoryFlagStore()
	require.NoError(t, s.Set(visitorCtx("a"), domain.FlagName, domain.FlagValue, time.Hour))

	_, ok, err := s.Get(visitorCtx("b"), domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryFlagStore_NoVisitorIsUnavailable(t *testing.T) {
	s := NewMemoryFlagStore()

	_, _, err := s.Get(context.Background(), domain.FlagName)
	assert.True(t, errors.Is(err, domain.ErrFlagStoreUnavailable))
	assert.True(t, errors.Is(s.Set(context.Background(), domain.FlagName, "true", time.Hour), domain.ErrFlagStoreUnavailable))
}

func TestMemoryFlagStore_Sweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryFlagStore(WithFlagClock(func() time.Time { return now }))
	require.NoError(t, s.Set(visitorCtx("a"), domain.FlagName, "true", time.Minute))
	require.NoError(t, s.Set(visitorCtx("b"), domain.FlagName, "true", time.Hour))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisFlagStore_SetWritesValueWithTTL(t *testing.T) {
	mr, rdb := newMiniredis(t)
	s := NewRedisFlagStore(rdb, WithFlagPrefix("cg:flag:"))
	ctx := visitorCtx("v1")

	require.NoError(t, s.Set(ctx, domain.FlagName, domain.FlagValue, 86400*time.Second))

	got, err := mr.Get("cg:flag:v1:clickLimit")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
	assert.Equal(t, 24*time.Hour, mr.TTL("cg:flag:v1:clickLimit"))

	v, ok, err := s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestRedisFlagStore_MissingAndExpired(t *testing.T) {
	mr, rdb := newMiniredis(t)
	s := NewRedisFlagStore(rdb)
	ctx := visitorCtx("v1")

	_, ok, err := s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, domain.FlagName, domain.FlagValue, time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, ok, err = s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisFlagStore_UnreachableIsUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisFlagStore(rdb)

	_, _, err := s.Get(visitorCtx("v1"), domain.FlagName)
	assert.True(t, errors.Is(err, domain.ErrFlagStoreUnavailable))

	err = s.Set(visitorCtx("v1"), domain.FlagName, "true", time.Minute)
	assert.True(t, errors.Is(err, domain.ErrFlagStoreUnavailable))
}
