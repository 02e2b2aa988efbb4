// ABOUTME: Home service adds and refreshes subscribed feeds and stores their posts
// ABOUTME: Loading failures are reported as HomeErrorType values ready for user-facing copy

package home

import (
	"context"
	"errors"

	"rss-reader-app/core/domain"
	"rss-reader-app/core/feed"
	"rss-reader-app/core/interfaces"
)

// FeedLoader fetches and parses feeds
type FeedLoader interface {
	ParseSingleFeed(ctx context.Context, feedURL string) (*domain.Feed, error)
	ParseFeeds(ctx context.Context, urls []string) ([]feed.Result, error)
	InvalidateCache(ctx context.Context, feedURL string) error
}

// RefreshResult is the outcome of refreshing one stored feed.
// Err is nil when the feed was reloaded and its posts stored.
type RefreshResult struct {
	Feed  domain.Feed
	Posts int
	Err   HomeErrorType
}

// HomeService manages the subscribed feeds
type HomeService struct {
	deps   interfaces.Dependencies
	loader FeedLoader
}

// NewHomeService creates a new home service instance
func NewHomeService(deps interfaces.Dependencies, loader FeedLoader) *HomeService {
	return &HomeService{
		deps:   deps,
		loader: loader,
	}
}

// AddFeed loads the feed at feedURL and stores it with its posts.
// Adding a URL that is already stored refreshes it in place.
func (s *HomeService) AddFeed(ctx context.Context, feedURL string) (*domain.Feed, HomeErrorType) {
	if s.deps.Store == nil {
		return nil, s.classify(feedURL, errors.New("feed store not configured"))
	}

	loaded, err := s.loader.ParseSingleFeed(ctx, feedURL)
	if err != nil {
		return nil, s.classify(feedURL, err)
	}

	if err := s.store(ctx, loaded); err != nil {
		return nil, s.classify(feedURL, err)
	}

	s.info("Feed added", map[string]interface{}{
		"url":   feedURL,
		"id":    loaded.ID,
		"posts": len(loaded.Posts),
	})

	return loaded, nil
}

// RefreshAll reloads every stored feed, bypassing the feed cache, and stores new posts.
// Results follow the store's feed order. The error is only set when the stored feeds
// cannot be listed.
func (s *HomeService) RefreshAll(ctx context.Context) ([]RefreshResult, error) {
	if s.deps.Store == nil {
		return nil, errors.New("feed store not configured")
	}

	stored, err := s.deps.Store.Feeds(ctx)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(stored))
	for i, f := range stored {
		urls[i] = f.URL
		if err := s.loader.InvalidateCache(ctx, f.URL); err != nil {
			s.debug("Failed to invalidate feed cache", map[string]interface{}{
				"url":   f.URL,
				"error": err.Error(),
			})
		}
	}

	loaded, err := s.loader.ParseFeeds(ctx, urls)
	if err != nil {
		return nil, err
	}

	results := make([]RefreshResult, len(stored))
	for i, f := range stored {
		results[i].Feed = f

		if i >= len(loaded) {
			results[i].Err = s.classify(f.URL, errors.New("feed was not loaded"))
			continue
		}
		if loaded[i].Err != nil {
			results[i].Err = s.classify(f.URL, loaded[i].Err)
			continue
		}

		fresh := loaded[i].Feed
		fresh.ID = f.ID
		if err := s.store(ctx, fresh); err != nil {
			results[i].Err = s.classify(f.URL, err)
			continue
		}

		results[i].Feed = *fresh
		results[i].Feed.Posts = nil
		results[i].Posts = len(fresh.Posts)
	}

	return results, nil
}

// store saves the feed and then its posts under the feed's stored ID
func (s *HomeService) store(ctx context.Context, f *domain.Feed) error {
	f.EnsureID()
	if err := s.deps.Store.SaveFeed(ctx, f); err != nil {
		return err
	}

	// SaveFeed may swap in the ID of an existing row with the same URL
	f.EnsureID()
	if len(f.Posts) == 0 {
		return nil
	}
	return s.deps.Store.SavePosts(ctx, f.Posts)
}

// classify turns a loading failure into a HomeErrorType and logs causes that
// could not be classified further
func (s *HomeService) classify(feedURL string, err error) HomeErrorType {
	homeErr := Classify(err)
	if unknown, ok := homeErr.(Unknown); ok {
		fields := map[string]interface{}{"url": feedURL}
		if unknown.Err != nil {
			fields["error"] = unknown.Err.Error()
		}
		s.logError("Feed failed with unclassified error", fields)
	} else if homeErr != nil {
		s.debug("Feed failed", map[string]interface{}{
			"url":   feedURL,
			"error": err.Error(),
			"kind":  homeErr.Error(),
		})
	}
	return homeErr
}

func (s *HomeService) debug(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Debug(msg, fields)
	}
}

func (s *HomeService) info(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields)
	}
}

func (s *HomeService) logError(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error(msg, fields)
	}
}
