// Package notifications decides whether a poll result is worth a push
// notification, renders it, and delivers it through Pushover.
//
// Pipeline: select event → compose message → send.
// Heartbeats and error reports bypass selection and go straight to compose.
package notifications

import (
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const DefaultPushoverURL = "https://api.pushover.net/1/messages.json"

// --------------------------------------------------------------------------
// Events
// --------------------------------------------------------------------------

// Kind names an event variant. Used as a metrics label and in status output.
type Kind string

const (
	KindAppointmentsFound Kind = "appointments_found"
	KindNextSlotFound     Kind = "next_slot_found"
	KindAliveHeartbeat    Kind = "alive_heartbeat"
	KindErrorOccurred     Kind = "error_occurred"
)

// Event is a notifiable event. The concrete types below are the only
// implementations.
type Event interface {
	Kind() Kind
}

// SelectedSlot is the earliest qualifying slot and the day it belongs to.
type SelectedSlot struct {
	Timestamp string
	Day       time.Time
}

// AppointmentsFound is produced when total > 0 and at least one slot falls
// on or before the limit date.
type AppointmentsFound struct {
	Count   int
	Closest SelectedSlot
	// AllFormattedTimes holds every slot on or before the limit date as
	// "YYYY-MM-DD HH:MM", sorted.
	AllFormattedTimes []string
}

// NextSlotFound is produced when total == 0 but next_slot is within the limit.
type NextSlotFound struct {
	Timestamp string
}

// AliveHeartbeat is the daily "still running" notice.
type AliveHeartbeat struct{}

// ErrorOccurred reports a failed cycle.
type ErrorOccurred struct {
	Description string
}

func (AppointmentsFound) Kind() Kind { return KindAppointmentsFound }
func (NextSlotFound) Kind() Kind     { return KindNextSlotFound }
func (AliveHeartbeat) Kind() Kind    { return KindAliveHeartbeat }
func (ErrorOccurred) Kind() Kind     { return KindErrorOccurred }
