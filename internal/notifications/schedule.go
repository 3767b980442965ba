package notifications

import "time"

// AliveCheck configures the daily heartbeat.
type AliveCheck struct {
	Enabled bool
	Hour    int // 0-23, wall-clock hour in now's location
}

// HeartbeatDue reports whether a heartbeat should be sent at now: the check
// is enabled, now is in the configured hour, and the minute is 0.
//
// Only cycles that happen to run during that minute see true. Depending on
// the poll interval the heartbeat can be skipped for a day or sent by more
// than one cycle within the same minute.
func HeartbeatDue(now time.Time, check AliveCheck) bool {
	return check.Enabled && now.Hour() == check.Hour && now.Minute() == 0
}
