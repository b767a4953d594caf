// Package reldate converts human-relative timestamps such as "3 hours ago"
// into absolute instants.
package reldate

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Layout is the ISO-8601 form produced by Normalize.
const Layout = "2006-01-02T15:04:05.000Z"

// units are matched in order as case-insensitive substrings.
var units = []struct {
	word     string
	duration time.Duration
}{
	{"minute", time.Minute},
	{"hour", time.Hour},
	{"day", 24 * time.Hour},
	{"week", 7 * 24 * time.Hour},
}

// Parse returns now minus the amount described by s. Strings without a
// leading integer or a known unit yield now unchanged. Amounts too large
// for a time.Duration saturate at the longest representable offset, so the
// result is never after now.
func Parse(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	count, err := strconv.Atoi(s[:end])
	if err != nil {
		return now
	}

	lower := strings.ToLower(s[end:])
	for _, u := range units {
		if strings.Contains(lower, u.word) {
			if int64(count) > math.MaxInt64/int64(u.duration) {
				return now.Add(math.MinInt64)
			}
			return now.Add(-time.Duration(count) * u.duration)
		}
	}
	return now
}

// Normalize is Parse formatted as a UTC ISO-8601 string.
func Normalize(s string, now time.Time) string {
	return Parse(s, now).UTC().Format(Layout)
}
