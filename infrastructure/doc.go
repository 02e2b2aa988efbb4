// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory feed cache on patrickmn/go-cache
// - cache/redis: Redis feed cache on go-redis
// - http/standard: net/http client with retries, a rate limiter and per-host circuit breakers
// - logger/logrus: JSON logger on logrus, optionally rotating its file with lumberjack
// - store/sqlite: Feed and post storage with post search on go-sqlite3
// - browser: Opens post links in the system browser
//
// # Cache Implementations
//
//	cache := memory.NewMemoryCache(10 * time.Minute)
//	err := cache.Set(ctx, "key", []byte("value"), 1*time.Hour)
//	value, err := cache.Get(ctx, "key")
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{Address: "localhost:6379"})
//
// # HTTP Client
//
//	client := standard.NewStandardHTTPClient(30*time.Second,
//	    standard.WithRateLimit(5, 10),
//	    standard.WithCircuitBreaker(standard.FeedFetchBreakerConfig()),
//	)
//	resp, err := client.Get(ctx, "https://example.com/feed.rss")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Post Store
//
//	store, err := sqlite.New("reader.db")
//	posts, err := store.SearchPosts(ctx, "golang", 100)
package infrastructure
