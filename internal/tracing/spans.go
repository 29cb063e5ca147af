package tracing

// Span names.
const (
	SpanCompile = "query.compile"
	SpanSearch  = "store.search"
	SpanMatch   = "notify.match"
)

// Span attribute keys.
const (
	AttrEntity      = "sieve.entity"
	AttrQuery       = "sieve.query"
	AttrCanonical   = "sieve.query.canonical"
	AttrCacheHit    = "sieve.cache.hit"
	AttrResultCount = "sieve.result.count"
	AttrFilter      = "sieve.filter"
	AttrErrorKind   = "error.kind"
)
