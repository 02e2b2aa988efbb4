// ABOUTME: Wires configuration, logging, caching, HTTP, storage and services together
// ABOUTME: Shared by every reader command

package main

import (
	"context"
	"fmt"
	"time"

	"rss-reader-app/core/feed"
	"rss-reader-app/core/home"
	"rss-reader-app/core/interfaces"
	"rss-reader-app/core/search"
	"rss-reader-app/infrastructure/cache/memory"
	"rss-reader-app/infrastructure/cache/redis"
	stdhttp "rss-reader-app/infrastructure/http/standard"
	logruslogger "rss-reader-app/infrastructure/logger/logrus"
	"rss-reader-app/infrastructure/store/sqlite"
	"rss-reader-app/pkg/config"
	"rss-reader-app/pkg/featureflags"
)

// runtime holds the wired dependencies of one command invocation
type runtime struct {
	cfg    *config.Config
	logger *logruslogger.Logger
	store  *sqlite.Store
	deps   interfaces.Dependencies

	feeds  *feed.FeedService
	home   *home.HomeService
	search *search.SearchService

	closers []func() error
}

// newRuntime loads the configuration and builds every dependency
func newRuntime() (*runtime, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := &runtime{cfg: cfg}

	rt.logger = logruslogger.NewFileLogger(logruslogger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, cfg.Log.Level)
	rt.closers = append(rt.closers, rt.logger.Close)

	rt.logger.Info("Starting reader", map[string]interface{}{
		"db_path":    cfg.Store.Path,
		"cache_type": cfg.Cache.Type,
	})

	store, err := sqlite.New(cfg.Store.Path, sqlite.WithLogger(rt.logger))
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open post database: %w", err)
	}
	rt.store = store
	rt.closers = append(rt.closers, store.Close)

	cache, closeCache := newCache(cfg.Cache, rt.logger)
	if closeCache != nil {
		rt.closers = append(rt.closers, closeCache)
	}

	rt.deps = interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: newHTTPClient(cfg.HTTP, rt.logger),
		Logger:     rt.logger,
		Store:      store,
	}

	rt.feeds = feed.NewFeedService(rt.deps)
	rt.home = home.NewHomeService(rt.deps, rt.feeds)
	rt.search = search.NewSearchService(rt.deps, cfg.Search.ResultLimit)

	return rt, nil
}

// newCache builds the configured feed cache. A nil cache disables caching.
// Redis falls back to memory when the server cannot be reached.
func newCache(cfg config.CacheConfig, logger interfaces.Logger) (interfaces.Cache, func() error) {
	cleanup := time.Duration(cfg.Memory.CleanupInterval) * time.Second

	switch cfg.Type {
	case "none":
		logger.Info("Feed cache disabled", nil)
		return nil, nil
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCache(cleanup), nil
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Redis.Address,
		})
		return redisCache, redisCache.Close
	default:
		logger.Info("Using memory cache", nil)
		return memory.NewMemoryCache(cleanup), nil
	}
}

func newHTTPClient(cfg config.HTTPConfig, logger interfaces.Logger) *stdhttp.StandardHTTPClient {
	breaker := stdhttp.FeedFetchBreakerConfig()
	if cfg.BreakerFailureRatio > 0 {
		breaker.FailureThreshold = cfg.BreakerFailureRatio
	}

	return stdhttp.NewStandardHTTPClient(cfg.RequestTimeout(),
		stdhttp.WithMaxRetries(cfg.MaxRetries),
		stdhttp.WithUserAgent(cfg.UserAgent),
		stdhttp.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		stdhttp.WithCircuitBreaker(breaker),
		stdhttp.WithLogger(logger),
	)
}

// withFlags attaches the environment feature flag manager to ctx
func withFlags(ctx context.Context) context.Context {
	return featureflags.WithManager(ctx, featureflags.NewEnvManager(featureEnvPrefix))
}

// Close releases resources in reverse order of creation
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i]()
	}
}
