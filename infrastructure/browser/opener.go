// ABOUTME: Opens post links in the system web browser
// ABOUTME: Browser helper output is discarded so it cannot corrupt the terminal UI

package browser

import (
	"errors"
	"io"
	"net/url"

	"rss-reader-app/core/interfaces"

	"github.com/pkg/browser"
)

func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Opener opens links with the platform browser
type Opener struct {
	open   func(string) error
	logger interfaces.Logger
}

// NewOpener creates an opener that logs failures to logger
func NewOpener(logger interfaces.Logger) *Opener {
	return &Opener{
		open:   browser.OpenURL,
		logger: logger,
	}
}

// Open opens link when it is an absolute http(s) URL
func (o *Opener) Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("only absolute http and https links can be opened")
	}
	return o.open(u.String())
}

// OpenLink opens link and logs any failure. It matches the search screen's openLink callback
// and blocks until the platform helper exits.
func (o *Opener) OpenLink(link string) {
	if err := o.Open(link); err != nil && o.logger != nil {
		o.logger.Warn("Failed to open link", map[string]interface{}{
			"link":  link,
			"error": err.Error(),
		})
	}
}
