// Package components renders the building blocks shared by reader screens.
package components

import (
	"strings"
	"time"

	"rss-reader-app/core/domain"
	"rss-reader-app/pkg/utils/duration"
	htmlutil "rss-reader-app/pkg/utils/html"
	"rss-reader-app/ui/theme"
)

// PostItemHeight is the number of lines RenderPostItem always produces
const PostItemHeight = 3

// horizontal padding on each side of a post row
const itemPadding = 2

// RenderPostItem draws a post as three lines: headline, summary and metadata.
// Empty lines are kept so every row has the same height.
func RenderPostItem(post domain.Post, width int, selected bool, styles theme.Styles, now time.Time) string {
	inner := width - 2*itemPadding
	if inner < 4 {
		inner = 4
	}

	marker := "  "
	titleStyle := styles.Title
	if selected {
		marker = styles.Marker.Render("▌ ")
		titleStyle = styles.SelectedTitle
	}

	title := titleStyle.Render(htmlutil.Truncate(post.DisplayTitle(), inner))

	summary := ""
	if post.Title != "" && post.Description != "" {
		summary = styles.Description.Render(htmlutil.Truncate(post.Description, inner))
	}

	meta := metaLine(post, now)
	if meta != "" {
		meta = styles.Meta.Render(htmlutil.Truncate(meta, inner))
	}

	pad := strings.Repeat(" ", itemPadding)
	return strings.Join([]string{
		marker + title,
		pad + summary,
		pad + meta,
	}, "\n")
}

func metaLine(post domain.Post, now time.Time) string {
	parts := make([]string, 0, 2)
	if post.FeedTitle != "" {
		parts = append(parts, post.FeedTitle)
	}
	if age := duration.Ago(post.Published, now); age != "" {
		parts = append(parts, age)
	}
	return strings.Join(parts, " • ")
}
