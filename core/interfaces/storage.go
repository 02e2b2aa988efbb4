// ABOUTME: Storage interfaces for persisting feeds and posts
// ABOUTME: Defines contracts for data persistence operations used by feed loading and search

package interfaces

import (
	"context"

	"rss-reader-app/core/domain"
)

// FeedStore defines the interface for feed persistence
type FeedStore interface {
	// SaveFeed inserts or updates a feed keyed by its URL.
	// When a feed with the same URL exists, its stored ID is written back into feed.
	SaveFeed(ctx context.Context, feed *domain.Feed) error

	// Feeds returns every stored feed without posts, ordered by title
	Feeds(ctx context.Context) ([]domain.Feed, error)
}

// PostStore defines the interface for post persistence and lookup
type PostStore interface {
	// SavePosts upserts posts; each post must carry its FeedID
	SavePosts(ctx context.Context, posts []domain.Post) error

	// SearchPosts returns at most limit posts whose title or description contains
	// query (case-insensitive), newest first
	SearchPosts(ctx context.Context, query string, limit int) ([]domain.Post, error)
}

// Store combines feed and post persistence
type Store interface {
	FeedStore
	PostStore
}
