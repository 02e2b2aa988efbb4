// ABOUTME: Feed service handles RSS/Atom/JSON feed fetching, parsing and caching
// ABOUTME: Failures come back as typed errors so the home layer can classify them

package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"rss-reader-app/core/domain"
	coreerrors "rss-reader-app/core/errors"
	"rss-reader-app/core/interfaces"
	"rss-reader-app/pkg/featureflags"
	htmlutil "rss-reader-app/pkg/utils/html"
	timeutil "rss-reader-app/pkg/utils/time"

	"github.com/mmcdole/gofeed"
)

const (
	// maxConcurrentFetches bounds ParseFeeds parallelism
	maxConcurrentFetches = 10

	// feedCacheTTL is how long a parsed feed is served from cache
	feedCacheTTL = time.Hour

	// maxFeedSize caps the body read from a feed host
	maxFeedSize = 10 << 20
)

// FeedService handles feed parsing and management
type FeedService struct {
	deps interfaces.Dependencies
}

// NewFeedService creates a new feed service instance
func NewFeedService(deps interfaces.Dependencies) *FeedService {
	return &FeedService{
		deps: deps,
	}
}

// Result is the outcome of loading one feed URL
type Result struct {
	URL  string
	Feed *domain.Feed
	Err  error
}

// ParseSingleFeed fetches and parses a feed from the given URL
func (s *FeedService) ParseSingleFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	if feedURL == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "feed URL cannot be empty"}
	}

	parsedURL, err := url.Parse(feedURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "invalid URL format"}
	}

	useCache := featureflags.IsEnabled(ctx, featureflags.FeedCache)
	if useCache {
		cachedFeed, err := s.getCachedFeed(ctx, feedURL)
		if err == nil && cachedFeed != nil {
			s.debug("Feed served from cache", map[string]interface{}{"url": feedURL})
			return cachedFeed, nil
		}
	}

	content, contentType, err := s.fetch(ctx, feedURL, parsedURL.Host)
	if err != nil {
		return nil, err
	}

	feed, err := s.parseFeedContent(content, feedURL, contentType)
	if coreerrors.IsUnsupportedContent(err) {
		// Follow at most one advertised feed link
		if discovered, ok := discoverFeedURL(content, feedURL); ok && discovered != feedURL {
			s.debug("Following discovered feed link", map[string]interface{}{
				"url":  feedURL,
				"feed": discovered,
			})
			feed, err = s.loadDiscovered(ctx, discovered)
		}
	}
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cacheFeed(ctx, feedURL, feed); err != nil {
			s.debug("Failed to cache feed", map[string]interface{}{"url": feedURL, "error": err.Error()})
		}
	}

	return feed, nil
}

// fetch downloads the document at feedURL
func (s *FeedService) fetch(ctx context.Context, feedURL, host string) ([]byte, string, error) {
	if s.deps.HTTPClient == nil {
		return nil, "", errors.New("HTTP client not configured")
	}

	resp, err := s.deps.HTTPClient.Get(ctx, feedURL)
	if err != nil {
		return nil, "", coreerrors.WrapError(err, "failed to fetch feed")
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, "", &coreerrors.ExternalAPIError{
			StatusCode: resp.StatusCode(),
			Message:    http.StatusText(resp.StatusCode()),
			API:        host,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body(), maxFeedSize))
	if err != nil {
		return nil, "", coreerrors.WrapError(err, "failed to read feed")
	}

	return body, resp.Header("Content-Type"), nil
}

// loadDiscovered fetches and parses a feed URL found on a web page
func (s *FeedService) loadDiscovered(ctx context.Context, feedURL string) (*domain.Feed, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, &coreerrors.ValidationError{Field: "url", Message: "invalid discovered feed URL"}
	}

	content, contentType, err := s.fetch(ctx, feedURL, u.Host)
	if err != nil {
		return nil, err
	}
	return s.parseFeedContent(content, feedURL, contentType)
}

// parseFeedContent parses feed content from bytes
func (s *FeedService) parseFeedContent(content []byte, feedURL, contentType string) (*domain.Feed, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, &coreerrors.ParseError{URL: feedURL, Err: errors.New("empty feed content")}
	}

	if gofeed.DetectFeedType(bytes.NewReader(content)) == gofeed.FeedTypeUnknown {
		return nil, &coreerrors.UnsupportedContentError{URL: feedURL, ContentType: contentType}
	}

	parser := gofeed.NewParser()
	parsedFeed, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, &coreerrors.UnsupportedContentError{URL: feedURL, ContentType: contentType}
		}
		return nil, &coreerrors.ParseError{URL: feedURL, Err: err}
	}

	feed := &domain.Feed{
		Title:       strings.TrimSpace(parsedFeed.Title),
		Description: htmlutil.StripHTML(parsedFeed.Description),
		URL:         feedURL,
		Link:        parsedFeed.Link,
		Posts:       make([]domain.Post, 0, len(parsedFeed.Items)),
	}
	if feed.Title == "" {
		feed.Title = feedURL
	}

	if parsedFeed.UpdatedParsed != nil {
		feed.LastUpdated = *parsedFeed.UpdatedParsed
	} else if parsedFeed.PublishedParsed != nil {
		feed.LastUpdated = *parsedFeed.PublishedParsed
	} else {
		feed.LastUpdated = time.Now()
	}

	if parsedFeed.Image != nil {
		feed.Icon = parsedFeed.Image.URL
	}

	for _, item := range parsedFeed.Items {
		post := s.convertItemToDomain(item, parsedFeed)
		if !post.IsValid() {
			continue
		}
		post.FeedTitle = feed.Title
		feed.Posts = append(feed.Posts, post)
	}

	return feed, nil
}

// convertItemToDomain converts a gofeed item to a domain post
func (s *FeedService) convertItemToDomain(item *gofeed.Item, feed *gofeed.Feed) domain.Post {
	post := domain.Post{
		ID:          item.GUID,
		Title:       strings.TrimSpace(htmlutil.StripHTML(item.Title)),
		Description: htmlutil.StripHTML(item.Description),
		Link:        item.Link,
	}

	if post.ID == "" {
		post.ID = item.Link
	}

	if post.Description == "" && item.Content != "" {
		post.Description = htmlutil.StripHTML(item.Content)
	}

	if item.PublishedParsed != nil {
		post.Published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		post.Published = *item.UpdatedParsed
	} else if item.Published != "" {
		post.Published = timeutil.ParseFlexibleTime(item.Published)
	}

	post.ImageURL = s.findThumbnail(item, feed)

	return post
}

// findThumbnail finds a post image from various sources
func (s *FeedService) findThumbnail(item *gofeed.Item, feed *gofeed.Feed) string {
	// 1. Image enclosures
	for _, enc := range item.Enclosures {
		if enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}

	// 2. Item image
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	// 3. Feed image
	if feed != nil && feed.Image != nil && feed.Image.URL != "" {
		return feed.Image.URL
	}

	return ""
}

// getCachedFeed retrieves a feed from cache
func (s *FeedService) getCachedFeed(ctx context.Context, feedURL string) (*domain.Feed, error) {
	if s.deps.Cache == nil {
		return nil, nil
	}

	data, err := s.deps.Cache.Get(ctx, cacheKey(feedURL))
	if err != nil {
		return nil, err
	}

	if data == nil {
		return nil, nil
	}

	var feed domain.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}

	return &feed, nil
}

// cacheFeed stores a feed in cache
func (s *FeedService) cacheFeed(ctx context.Context, feedURL string, feed *domain.Feed) error {
	if s.deps.Cache == nil {
		return nil
	}

	data, err := json.Marshal(feed)
	if err != nil {
		return err
	}

	return s.deps.Cache.Set(ctx, cacheKey(feedURL), data, feedCacheTTL)
}

// InvalidateCache drops the cached copy of a feed so the next load hits the network
func (s *FeedService) InvalidateCache(ctx context.Context, feedURL string) error {
	if s.deps.Cache == nil {
		return nil
	}
	return s.deps.Cache.Delete(ctx, cacheKey(feedURL))
}

func cacheKey(feedURL string) string {
	return fmt.Sprintf("feed:%s", feedURL)
}

// ParseFeeds loads multiple feeds concurrently.
// Results are returned in the order of urls, one per URL.
func (s *FeedService) ParseFeeds(ctx context.Context, urls []string) ([]Result, error) {
	if urls == nil {
		return nil, errors.New("urls cannot be nil")
	}

	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	semaphore := make(chan struct{}, maxConcurrentFetches)
	var wg sync.WaitGroup

	for i, feedURL := range urls {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()

			results[i].URL = feedURL

			select {
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			feed, err := s.ParseSingleFeed(ctx, feedURL)
			results[i].Feed = feed
			results[i].Err = err
			if err != nil {
				s.warn("Failed to load feed", map[string]interface{}{
					"url":   feedURL,
					"error": err.Error(),
				})
			}
		}(i, feedURL)
	}

	wg.Wait()

	return results, nil
}

func (s *FeedService) debug(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Debug(msg, fields)
	}
}

func (s *FeedService) warn(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Warn(msg, fields)
	}
}
