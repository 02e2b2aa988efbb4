// ABOUTME: Duration formatting utilities for post timestamps
// ABOUTME: Produces the compact relative ages shown next to each search result

package duration

import (
	"fmt"
	"time"
)

// Ago formats the time elapsed between t and now as a compact relative age
// ("now", "5m", "3h", "2d", "4w"). Older than a year falls back to a date.
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dw", int(d/(7*24*time.Hour)))
	}
	return t.Format("Jan 2, 2006")
}
