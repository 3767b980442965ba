package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeatDue(t *testing.T) {
	at := func(hour, minute, second int) time.Time {
		return time.Date(2025, 1, 12, hour, minute, second, 0, time.UTC)
	}
	enabled := AliveCheck{Enabled: true, Hour: 9}

	tests := []struct {
		name  string
		now   time.Time
		check AliveCheck
		want  bool
	}{
		{"top of configured hour", at(9, 0, 0), enabled, true},
		{"late in the zero minute", at(9, 0, 59), enabled, true},
		{"one minute past", at(9, 1, 0), enabled, false},
		{"half past", at(9, 30, 0), enabled, false},
		{"other hour", at(10, 0, 0), enabled, false},
		{"disabled", at(9, 0, 0), AliveCheck{Enabled: false, Hour: 9}, false},
		{"midnight hour", at(0, 0, 0), AliveCheck{Enabled: true, Hour: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeartbeatDue(tt.now, tt.check))
		})
	}
}

func TestHeartbeatDue_EveryMinuteOfTheHour(t *testing.T) {
	check := AliveCheck{Enabled: true, Hour: 18}
	for m := 1; m < 60; m++ {
		now := time.Date(2025, 1, 12, 18, m, 0, 0, time.UTC)
		assert.False(t, HeartbeatDue(now, check), "minute %d", m)
	}
}
