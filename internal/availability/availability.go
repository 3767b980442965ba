// Package availability decodes the Doctolib availability payload into a
// structured response and provides the timestamp helpers shared by the
// selection and notification layers.
//
// The payload is a "day → list of slots" structure:
//
//	{"total": 3, "availabilities": [{"date": "...", "slots": ["..."]}], "next_slot": "..."}
//
// Dates and timestamps are kept as the raw strings the source sent. They are
// parsed lazily by DateOf / ParseTimestamp, which truncate to the calendar
// date and to second precision respectively and ignore the UTC offset.
package availability

import "fmt"

// Response is one decoded availability payload. It lives for a single poll
// cycle and is never mutated after Parse returns.
type Response struct {
	// Total is the number of matching appointments reported by the source.
	Total int
	// Availabilities is in source order (assumed ascending by date, not verified).
	Availabilities []DaySlots
	// NextSlot is empty when the source did not send one.
	NextSlot string
}

// DaySlots pairs a day with its slots. Slots may be empty.
type DaySlots struct {
	Date  string
	Slots []string
}

// HasNextSlot reports whether the payload carried a non-empty next_slot.
func (r *Response) HasNextSlot() bool {
	return r.NextSlot != ""
}

// ParseError reports a malformed or schema-violating payload, or a date /
// timestamp string that cannot be interpreted.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
