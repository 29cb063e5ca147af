package compiler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/sieve/internal/cachemanager"
	"github.com/zjrosen/sieve/internal/criteria"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/metrics"
)

// Cache memoizes compiled queries by entity, current user, query text and
// the hour of the compiler's clock. Day relative dates such as "today"
// never outlive their day; "now" and hour offsets lag by under an hour.
type Cache struct {
	compiler *Compiler
	queries  cachemanager.CacheManager[string, any]
	ttl      time.Duration
}

// NewCache returns a compiled-query cache in front of c.
func NewCache(c *Compiler, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	return &Cache{
		compiler: c,
		queries:  cachemanager.NewInMemoryCacheManager[string, any]("compiled-queries", ttl, cachemanager.DefaultCleanupInterval),
		ttl:      ttl,
	}
}

// Compiler returns the compiler behind the cache.
func (c *Cache) Compiler() *Compiler {
	return c.compiler
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	return c.queries.Count()
}

// Flush drops every cached query.
func (c *Cache) Flush(ctx context.Context) error {
	return c.queries.Flush(ctx)
}

// CompileCached is Compile backed by cache. Errors are not cached.
func CompileCached[R any](ctx context.Context, cache *Cache, schema *criteria.Schema[R], input string, qc QueryContext) (*criteria.EntityQuery[R], error) {
	key, err := cacheKey(ctx, schema.Entity(), input, qc, cache.compiler.hour())
	if err != nil {
		return nil, err
	}
	if v, ok := cache.queries.Get(ctx, key); ok {
		if q, ok := v.(*criteria.EntityQuery[R]); ok {
			metrics.CompileTotal.WithLabelValues(schema.Entity(), metrics.OutcomeCacheHit).Inc()
			return q, nil
		}
	}

	q, err := Compile(ctx, cache.compiler, schema, input, qc)
	if err != nil {
		return nil, err
	}
	cache.queries.Set(ctx, key, q, cache.ttl)
	return q, nil
}

func cacheKey(ctx context.Context, entity, input string, qc QueryContext, hour string) (string, error) {
	user := "-"
	if qc.WithCurrentUserCriteria && qc.CurrentUser != nil {
		u, ok, err := qc.CurrentUser.CurrentUser(ctx)
		if err != nil {
			return "", err
		}
		if ok {
			user = strconv.FormatInt(u.ID, 10)
		}
	}
	return strings.Join([]string{entity, user, hour, input}, "\x00"), nil
}

func (c *Compiler) hour() string {
	return c.now().In(c.loc).Format("2006-01-02T15")
}

// CachedUserResolver memoizes successful lookups of r. Each hit extends the
// entry by ttl.
func CachedUserResolver(r UserResolver, ttl time.Duration) UserResolver {
	rtc := cachemanager.NewReadThroughCache[string, User, string](
		cachemanager.NewInMemoryCacheManager[string, User]("users", ttl, cachemanager.DefaultCleanupInterval),
		r.ResolveUser,
		false,
	)
	return UserResolverFunc(func(ctx context.Context, name string) (User, error) {
		u, err := rtc.GetWithRefresh(ctx, name, name, ttl)
		if err != nil {
			log.Debug(log.CatCache, "User lookup missed", "name", name, "error", err)
		}
		return u, err
	})
}

// CachedCommitResolver memoizes successful lookups of r for ttl.
func CachedCommitResolver(r CommitResolver, ttl time.Duration) CommitResolver {
	rtc := cachemanager.NewReadThroughCache[string, string, string](
		cachemanager.NewInMemoryCacheManager[string, string]("commits", ttl, cachemanager.DefaultCleanupInterval),
		r.ResolveCommit,
		false,
	)
	return CommitResolverFunc(func(ctx context.Context, revision string) (string, error) {
		return rtc.Get(ctx, revision, revision, ttl)
	})
}
