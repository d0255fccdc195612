package core

import "time"

// TimeFormat is the textual layout of created_at/updated_at in serialized records:
// ISO-8601 with microseconds and no zone designator.
const TimeFormat = "2006-01-02T15:04:05.000000"

// FormatTime renders t in TimeFormat (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime is the exact inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeFormat, s)
}

// Now returns the current time at the precision kept on disk.
func Now() time.Time {
	return Truncate(time.Now())
}

// Truncate normalizes t to UTC microseconds so that it survives a
// FormatTime/ParseTime round trip unchanged.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
