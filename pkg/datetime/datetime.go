package datetime

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTime = errors.New("invalid date/time value")

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parse accepts RFC 3339, a few ISO-8601 shorthands (read as UTC) and
// epoch milliseconds.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTime
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromMillis(ms), nil
	}
	return time.Time{}, ErrInvalidTime
}

// FromMillis converts epoch milliseconds to a UTC time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Format renders t the way the API emits times
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
