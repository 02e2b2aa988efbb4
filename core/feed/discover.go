// ABOUTME: Feed discovery finds the feed a web page advertises in its head
// ABOUTME: Lets users subscribe with a site address instead of the feed address

package feed

import (
	"bytes"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// feedLinkTypes are the link types that announce a feed, in order of preference
var feedLinkTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
	"application/feed+json",
}

// discoverFeedURL returns the absolute URL of the first feed advertised by the HTML
// page at pageURL through <link rel="alternate">. Relative links resolve against the
// page's <base> when present.
func discoverFeedURL(page []byte, pageURL string) (string, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	best, bestRank := "", len(feedLinkTypes)
	doc.Find(`link[rel~="alternate"][href]`).Each(func(_ int, sel *goquery.Selection) {
		linkType := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
		rank := slices.Index(feedLinkTypes, linkType)
		if rank < 0 || rank >= bestRank {
			return
		}

		ref, err := base.Parse(strings.TrimSpace(sel.AttrOr("href", "")))
		if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") {
			return
		}
		best, bestRank = ref.String(), rank
	})

	return best, best != ""
}
