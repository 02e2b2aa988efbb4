// ABOUTME: Time parsing utilities for flexible date/time parsing
// ABOUTME: Handles the loosely formatted dates commonly found in RSS/Atom feeds

package time

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layouts dateparse does not recognise but some feeds still emit
var timeFormats = []string{
	"02 Jan 2006 15:04:05 MST",
	"02 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// ParseFlexibleTime attempts to parse a time string using various formats.
// Dates without a zone are read as UTC. It returns the zero time when nothing matches.
func ParseFlexibleTime(timeStr string) time.Time {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return time.Time{}
	}

	if t, err := dateparse.ParseIn(timeStr, time.UTC); err == nil {
		return t
	}

	for _, format := range timeFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

// ParseWithDefault attempts to parse a time string, returning a default if parsing fails
func ParseWithDefault(timeStr string, defaultTime time.Time) time.Time {
	if parsed := ParseFlexibleTime(timeStr); !parsed.IsZero() {
		return parsed
	}
	return defaultTime
}
