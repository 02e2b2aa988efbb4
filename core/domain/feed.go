// ABOUTME: Feed domain model represents a subscribed RSS/Atom/JSON feed with its metadata
// ABOUTME: Provides validation logic to ensure feed data integrity before it is stored

package domain

import (
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Feed represents a subscribed RSS, Atom or JSON feed
type Feed struct {
	// ID is the unique identifier for the feed
	ID string

	// Title is the human-readable title of the feed
	Title string

	// Description provides a brief description of the feed's content
	Description string

	// URL is the feed's source URL (the actual RSS/Atom URL)
	URL string

	// Link is the website URL associated with the feed
	Link string

	// Icon is the feed image or favicon URL
	Icon string

	// Posts contains the feed entries
	Posts []Post

	// LastUpdated indicates when the feed was last refreshed
	LastUpdated time.Time
}

// NewFeed creates a new Feed instance with a fresh ID and validation
func NewFeed(title, description, feedURL string) (*Feed, error) {
	feed := &Feed{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		URL:         feedURL,
		Posts:       []Post{},
		LastUpdated: time.Now(),
	}

	if err := feed.Validate(); err != nil {
		return nil, err
	}

	return feed, nil
}

// EnsureID assigns a random ID when the feed does not have one yet
func (f *Feed) EnsureID() {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	for i := range f.Posts {
		f.Posts[i].FeedID = f.ID
		f.Posts[i].FeedTitle = f.Title
	}
}

// Validate checks if the feed has valid required fields
func (f *Feed) Validate() error {
	if f.Title == "" {
		return errors.New("feed title cannot be empty")
	}

	if f.URL == "" {
		return errors.New("feed URL cannot be empty")
	}

	parsed, err := url.Parse(f.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("feed URL is not valid format")
	}

	return nil
}
