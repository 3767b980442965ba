package availability

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	errMissing  = errors.New("field is required")
	errNegative = errors.New("must not be negative")
)

// rawResponse mirrors the wire shape. Pointers distinguish "absent" from
// zero values so required fields can be enforced.
type rawResponse struct {
	Total          *int64   `json:"total"`
	Availabilities []rawDay `json:"availabilities"`
	NextSlot       *string  `json:"next_slot"`
}

type rawDay struct {
	Date  *string  `json:"date"`
	Slots []string `json:"slots"`
}

// Parse decodes a raw payload. total is required and must be a non-negative
// integer; every availabilities entry must carry a date. A missing
// availabilities array decodes as empty, a missing next_slot as absent.
// Date and timestamp formats are not checked here.
func Parse(payload []byte) (*Response, error) {
	var raw rawResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &ParseError{Field: "payload", Err: err}
	}

	if raw.Total == nil {
		return nil, &ParseError{Field: "total", Err: errMissing}
	}
	if *raw.Total < 0 {
		return nil, &ParseError{Field: "total", Value: fmt.Sprint(*raw.Total), Err: errNegative}
	}

	resp := &Response{
		Total:          int(*raw.Total),
		Availabilities: make([]DaySlots, 0, len(raw.Availabilities)),
	}

	for i, day := range raw.Availabilities {
		if day.Date == nil {
			return nil, &ParseError{Field: fmt.Sprintf("availabilities[%d].date", i), Err: errMissing}
		}
		slots := day.Slots
		if slots == nil {
			slots = []string{}
		}
		resp.Availabilities = append(resp.Availabilities, DaySlots{Date: *day.Date, Slots: slots})
	}

	if raw.NextSlot != nil {
		resp.NextSlot = *raw.NextSlot
	}

	return resp, nil
}
