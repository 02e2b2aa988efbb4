// Package core contains the business logic of the reader.
// It does not depend on the terminal UI or on any storage or network library;
// those are reached through the contracts in core/interfaces.
//
// The core package is organized into several sub-packages:
//
// - domain: Feed and Post models with their validation rules
// - feed: Feed fetching and parsing with a cache-through layer
// - home: Adding and refreshing feeds, and the HomeErrorType failure taxonomy
// - search: Post search service and the search screen presenter
// - workers: Scheduled background refresh
// - errors: Typed errors shared by the services
// - interfaces: Contracts for external dependencies (cache, HTTP, logger, store)
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	    Store:      myStore,      // implements interfaces.Store
//	}
//
//	homeService := home.NewHomeService(deps, feed.NewFeedService(deps))
//
//	added, homeErr := homeService.AddFeed(ctx, "https://example.com/feed.rss")
//	if homeErr != nil {
//	    fmt.Println(home.Message(homeErr))
//	}
package core
