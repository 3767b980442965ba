package notifications

import (
	"sort"
	"time"

	"github.com/albapepper/doctolib-checker/internal/availability"
)

// Select decides whether resp holds a notifiable event for limitDate.
// A nil Event with a nil error means there is nothing to report.
//
// When total > 0 the first day (in source order) with a non-empty slot list
// dated on or before limitDate supplies the closest slot, and its first
// listed slot wins. Slots within a day are not re-sorted. If no such day
// exists nothing is reported even though appointments exist.
//
// When total == 0, next_slot is reported if its date is on or before
// limitDate. Malformed dates or timestamps yield an *availability.ParseError.
func Select(resp *availability.Response, limitDate time.Time) (Event, error) {
	if resp.Total > 0 {
		closest, err := closestSlot(resp.Availabilities, limitDate)
		if err != nil {
			return nil, err
		}
		if closest == nil {
			return nil, nil
		}

		times, err := collectTimes(resp.Availabilities, limitDate)
		if err != nil {
			return nil, err
		}
		return AppointmentsFound{
			Count:             resp.Total,
			Closest:           *closest,
			AllFormattedTimes: times,
		}, nil
	}

	if !resp.HasNextSlot() {
		return nil, nil
	}

	// Validate the full timestamp up front so composing cannot fail later.
	if _, err := availability.ParseTimestamp(resp.NextSlot); err != nil {
		return nil, err
	}
	day, err := availability.DateOf(resp.NextSlot)
	if err != nil {
		return nil, err
	}
	if day.After(limitDate) {
		return nil, nil
	}
	return NextSlotFound{Timestamp: resp.NextSlot}, nil
}

// closestSlot returns the first slot of the first non-empty day within the
// limit. Empty days are skipped before their date is read.
func closestSlot(days []availability.DaySlots, limitDate time.Time) (*SelectedSlot, error) {
	for _, d := range days {
		if len(d.Slots) == 0 {
			continue
		}
		day, err := availability.DateOf(d.Date)
		if err != nil {
			return nil, err
		}
		if !day.After(limitDate) {
			return &SelectedSlot{Timestamp: d.Slots[0], Day: day}, nil
		}
	}
	return nil, nil
}

// collectTimes gathers every slot of every day within the limit, formatted
// for display and sorted chronologically.
func collectTimes(days []availability.DaySlots, limitDate time.Time) ([]string, error) {
	var times []string
	for _, d := range days {
		if len(d.Slots) == 0 {
			continue
		}
		day, err := availability.DateOf(d.Date)
		if err != nil {
			return nil, err
		}
		if day.After(limitDate) {
			continue
		}
		for _, s := range d.Slots {
			formatted, err := availability.FormatShort(s)
			if err != nil {
				return nil, err
			}
			times = append(times, formatted)
		}
	}
	sort.Strings(times)
	return times, nil
}
