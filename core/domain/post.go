// ABOUTME: Post domain model represents an individual entry within a feed
// ABOUTME: Posts are what the search screen lists and what a reader opens in the browser

package domain

import "time"

// Post represents an individual item/entry in a feed
type Post struct {
	// ID is the entry GUID, or the link when the feed has no GUIDs
	ID string

	// FeedID is the ID of the feed the post belongs to
	FeedID string

	// FeedTitle is a denormalised copy of the owning feed's title for list rows
	FeedTitle string

	// Title is the post headline
	Title string

	// Description is the plain text summary
	Description string

	// Link is the URL to the full article
	Link string

	// ImageURL is the post thumbnail, if any
	ImageURL string

	// Published is when the post was published
	Published time.Time
}

// IsValid checks if the post can be listed and opened
func (p *Post) IsValid() bool {
	if p.Link == "" {
		return false
	}

	return p.Title != "" || p.Description != ""
}

// DisplayTitle returns the headline, falling back to the description for untitled posts
func (p *Post) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Description
}
