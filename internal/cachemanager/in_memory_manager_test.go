package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type queryKey string

type compiledQuery struct {
	Entity    string
	Canonical string
}

func newQueryCache() *InMemoryCacheManager[queryKey, compiledQuery] {
	return NewInMemoryCacheManager[queryKey, compiledQuery]("compiled-queries", DefaultExpiration, DefaultCleanupInterval)
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := newQueryCache()
	want := compiledQuery{Entity: "issue", Canonical: `"Status" is "Open"`}
	cache.Set(context.Background(), "issue:7:status is open", want, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "issue:7:status is open")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestInMemoryCacheManager_GetMissingValue(t *testing.T) {
	cache := newQueryCache()

	got, ok := cache.Get(context.Background(), "issue:7:resolved")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithInvalidValueType(t *testing.T) {
	cache := newQueryCache()
	cache.cache.Set("issue:7:resolved", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "issue:7:resolved")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := newQueryCache()
	cache.Set(context.Background(), "k", compiledQuery{Entity: "pack"}, time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("commits", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.GetWithRefresh(context.Background(), "abc", time.Hour)
	require.False(t, ok)
	require.Equal(t, "", got)

	cache.Set(context.Background(), "abc", "abc123", DefaultExpiration)
	got, ok = cache.GetWithRefresh(context.Background(), "abc", time.Hour)
	require.True(t, ok)
	require.Equal(t, "abc123", got)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("commits", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	require.NoError(t, cache.Flush(ctx))

	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	require.Equal(t, 2, cache.Count())

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Count())
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)
}
