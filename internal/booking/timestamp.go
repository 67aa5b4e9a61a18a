package booking

import (
	"strings"
	"time"
)

const utcLayout = "2006-01-02T15:04:05Z"

// UTCTimestamp rewrites an RFC 3339 timestamp in UTC with a "Z" suffix.
// Unparseable input only has a "+00:00" offset replaced.
func UTCTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return strings.Replace(s, "+00:00", "Z", 1)
	}
	return t.UTC().Format(utcLayout)
}

// FormatUTC formats t the same way as UTCTimestamp.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(utcLayout)
}
