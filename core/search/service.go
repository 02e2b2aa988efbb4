// ABOUTME: Search service looks up stored posts matching a free-text query
// ABOUTME: Provides business logic for post search independent of the UI layer

package search

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"rss-reader-app/core/domain"
	coreerrors "rss-reader-app/core/errors"
	"rss-reader-app/core/interfaces"
)

const (
	// DefaultResultLimit caps the number of posts a search returns
	DefaultResultLimit = 100

	// maxQueryLength is the longest query accepted, in runes
	maxQueryLength = 100
)

// SearchService handles post search operations
type SearchService struct {
	deps  interfaces.Dependencies
	limit int
}

// NewSearchService creates a new search service instance.
// A non-positive limit falls back to DefaultResultLimit.
func NewSearchService(deps interfaces.Dependencies, limit int) *SearchService {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	return &SearchService{
		deps:  deps,
		limit: limit,
	}
}

// validateQuery validates search query parameters
func (s *SearchService) validateQuery(query string) error {
	if query == "" {
		return &coreerrors.ValidationError{Field: "query", Message: "search query cannot be empty"}
	}

	if utf8.RuneCountInString(query) > maxQueryLength {
		return &coreerrors.ValidationError{Field: "query", Message: "search query cannot exceed 100 characters"}
	}

	return nil
}

// SearchPosts returns stored posts whose title or description contains the query, newest first
func (s *SearchService) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	query = strings.TrimSpace(query)
	if err := s.validateQuery(query); err != nil {
		return nil, err
	}

	if s.deps.Store == nil {
		return nil, errors.New("post store not configured")
	}

	posts, err := s.deps.Store.SearchPosts(ctx, query, s.limit)
	if err != nil {
		return nil, coreerrors.WrapError(err, "failed to search posts")
	}

	if s.deps.Logger != nil {
		s.deps.Logger.Debug("Search completed", map[string]interface{}{
			"query":   query,
			"results": len(posts),
		})
	}

	return posts, nil
}
