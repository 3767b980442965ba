package notifications

import (
	"fmt"
	"strings"

	"github.com/albapepper/doctolib-checker/internal/availability"
)

// Composer renders events into Pushover message text. The fields describe
// the configured lookahead window and appear in every relevant template.
type Composer struct {
	Limit     int    // lookahead in days, display only
	StartDate string // YYYY-MM-DD
	LimitDate string // YYYY-MM-DD
}

// Compose returns the message for ev. Unknown event types render as an
// empty string.
func (c Composer) Compose(ev Event) string {
	switch e := ev.(type) {
	case AppointmentsFound:
		var b strings.Builder
		fmt.Fprintf(&b, "Found %d appointments available on Doctolib within %d day(s) from %s:",
			e.Count, c.Limit, c.StartDate)
		fmt.Fprintf(&b, "\nClosest: %s", displayTime(e.Closest.Timestamp))
		for _, t := range e.AllFormattedTimes {
			b.WriteString("\n")
			b.WriteString(t)
		}
		return b.String()
	case NextSlotFound:
		return fmt.Sprintf("New appointment available on Doctolib within your limit date! \nEarliest appointment: %s",
			displayTime(e.Timestamp))
	case AliveHeartbeat:
		return fmt.Sprintf("Doctolib script is still running. \nLooking for appointments up to %s", c.LimitDate)
	case ErrorOccurred:
		return fmt.Sprintf("An error occurred while running the Doctolib script: %s", e.Description)
	default:
		return ""
	}
}

// displayTime falls back to the raw string; Select has already validated
// every timestamp it puts into an event.
func displayTime(ts string) string {
	formatted, err := availability.FormatTimestamp(ts)
	if err != nil {
		return ts
	}
	return formatted
}
