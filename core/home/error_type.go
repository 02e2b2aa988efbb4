// ABOUTME: HomeErrorType is the closed classification of feed loading failures
// ABOUTME: Presentation code matches on it exhaustively to pick the message shown to the user

package home

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"

	coreerrors "rss-reader-app/core/errors"

	"github.com/mmcdole/gofeed"
)

// HomeErrorType classifies why loading a feed failed.
//
// The set is closed: the only implementations are UnknownFeedType, FailedToParseXML,
// Timeout and Unknown. Use MatchHomeError to handle a value; it takes one handler per
// variant, so adding a variant breaks every caller at compile time.
type HomeErrorType interface {
	error
	isHomeErrorType()
}

// UnknownFeedType means the fetched content is not recognised as syndication data
type UnknownFeedType struct{}

// FailedToParseXML means the document was malformed or had an unexpected structure
type FailedToParseXML struct{}

// Timeout means fetching the feed exceeded the allowed duration
type Timeout struct{}

// Unknown carries a failure that is not further classified
type Unknown struct {
	Err error
}

func (UnknownFeedType) isHomeErrorType()  {}
func (FailedToParseXML) isHomeErrorType() {}
func (Timeout) isHomeErrorType()          {}
func (Unknown) isHomeErrorType()          {}

func (UnknownFeedType) Error() string  { return "unknown feed type" }
func (FailedToParseXML) Error() string { return "failed to parse xml" }
func (Timeout) Error() string          { return "timeout" }

func (e Unknown) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return fmt.Sprintf("unknown error: %v", e.Err)
}

// Unwrap exposes the diagnostic cause
func (e Unknown) Unwrap() error {
	return e.Err
}

// MatchHomeError dispatches e to the handler for its variant.
// It panics on nil or on a foreign implementation, which cannot exist outside this package.
func MatchHomeError[T any](
	e HomeErrorType,
	onUnknownFeedType func() T,
	onFailedToParseXML func() T,
	onTimeout func() T,
	onUnknown func(cause error) T,
) T {
	switch v := e.(type) {
	case UnknownFeedType:
		return onUnknownFeedType()
	case FailedToParseXML:
		return onFailedToParseXML()
	case Timeout:
		return onTimeout()
	case Unknown:
		return onUnknown(v.Err)
	}
	panic(fmt.Sprintf("home: unhandled HomeErrorType %T", e))
}

// Classify maps a feed loading error onto its HomeErrorType. A nil error yields nil.
func Classify(err error) HomeErrorType {
	if err == nil {
		return nil
	}

	var already HomeErrorType
	if errors.As(err, &already) {
		return already
	}

	if coreerrors.IsUnsupportedContent(err) || errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return UnknownFeedType{}
	}

	var syntaxErr *xml.SyntaxError
	if coreerrors.IsParse(err) || errors.As(err, &syntaxErr) {
		return FailedToParseXML{}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout{}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout{}
	}

	return Unknown{Err: err}
}

// Message returns the user-facing copy for e
func Message(e HomeErrorType) string {
	return MatchHomeError(e,
		func() string { return "This link doesn't look like an RSS, Atom or JSON feed" },
		func() string { return "Couldn't read the feed, the document is malformed" },
		func() string { return "Timed out while loading the feed, try again later" },
		func(cause error) string {
			if cause == nil {
				return "Something went wrong while loading the feed"
			}
			return fmt.Sprintf("Something went wrong while loading the feed: %v", cause)
		},
	)
}
