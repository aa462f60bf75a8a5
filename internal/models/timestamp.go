package models

import "time"

// TimestampLayout is the ISO-8601 form, with millisecond precision, used
// for every persisted and reported timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
