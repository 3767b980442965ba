package availability

import (
	"fmt"
	"time"
)

// Layouts used when reading and rendering source strings.
const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "2006-01-02 15:04:05"
	ShortLayout   = "2006-01-02 15:04"

	timestampLayout = "2006-01-02T15:04:05"
)

// DateOf returns the calendar date held in the first 10 characters of s.
// Any time or offset component is discarded, so a slot near midnight in a
// non-UTC offset is classified by its local date.
func DateOf(s string) (time.Time, error) {
	if len(s) < len(DateLayout) {
		return time.Time{}, &ParseError{Field: "date", Value: s, Err: fmt.Errorf("shorter than %d characters", len(DateLayout))}
	}
	d, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, &ParseError{Field: "date", Value: s, Err: err}
	}
	return d, nil
}

// ParseTimestamp reads the "YYYY-MM-DDTHH:MM:SS" prefix of an ISO 8601
// timestamp. Fractional seconds and the UTC offset are dropped, so
// "2024-11-07T11:20:00.000+01:00" yields 11:20 as a wall-clock time.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) < len(timestampLayout) {
		return time.Time{}, &ParseError{Field: "timestamp", Value: s, Err: fmt.Errorf("shorter than %d characters", len(timestampLayout))}
	}
	t, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, &ParseError{Field: "timestamp", Value: s, Err: err}
	}
	return t, nil
}

// FormatTimestamp projects a source timestamp to "YYYY-MM-DD HH:MM:SS".
// The projection is one-way.
func FormatTimestamp(s string) (string, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return t.Format(DisplayLayout), nil
}

// FormatShort projects a source timestamp to "YYYY-MM-DD HH:MM". Strings in
// this form sort lexicographically in chronological order.
func FormatShort(s string) (string, error) {
	t, err := ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return t.Format(ShortLayout), nil
}
