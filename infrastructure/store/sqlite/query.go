// ABOUTME: Helpers for building safe LIKE patterns and converting stored timestamps
// ABOUTME: User text only ever reaches SQLite as a bound parameter

package sqlite

import (
	"strings"
	"time"
)

// slowQueryThreshold is the search duration above which a warning is logged
const slowQueryThreshold = 200 * time.Millisecond

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so they match literally with ESCAPE '\'
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// containsPattern builds a LIKE pattern matching any text that contains s
func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

// toUnix stores zero times as 0 so they read back as the zero time
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
