package notifications

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/doctolib-checker/internal/availability"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := availability.DateOf(s)
	require.NoError(t, err)
	return d
}

func TestSelect_AppointmentsFound(t *testing.T) {
	resp := &availability.Response{
		Total: 3,
		Availabilities: []availability.DaySlots{
			{Date: "2025-01-10", Slots: []string{}},
			{Date: "2025-01-12", Slots: []string{"2025-01-12T09:00:00+01:00"}},
			{Date: "2025-01-15", Slots: []string{"2025-01-15T10:00:00+01:00"}},
		},
	}

	ev, err := Select(resp, mustDate(t, "2025-01-20"))
	require.NoError(t, err)

	found, ok := ev.(AppointmentsFound)
	require.True(t, ok, "expected AppointmentsFound, got %T", ev)
	assert.Equal(t, 3, found.Count)
	assert.Equal(t, "2025-01-12T09:00:00+01:00", found.Closest.Timestamp)
	assert.Equal(t, mustDate(t, "2025-01-12"), found.Closest.Day)
	assert.Equal(t, []string{"2025-01-12 09:00", "2025-01-15 10:00"}, found.AllFormattedTimes)
}

func TestSelect_ClosestUsesSourceOrder(t *testing.T) {
	// Days and slots are trusted as given; only the display list is sorted.
	resp := &availability.Response{
		Total: 4,
		Availabilities: []availability.DaySlots{
			{Date: "2025-01-14T00:00:00.000+01:00", Slots: []string{"2025-01-14T16:00:00.000+01:00", "2025-01-14T08:00:00.000+01:00"}},
			{Date: "2025-01-11T00:00:00.000+01:00", Slots: []string{"2025-01-11T12:30:00.000+01:00"}},
			{Date: "2025-01-30T00:00:00.000+01:00", Slots: []string{"2025-01-30T08:00:00.000+01:00"}},
		},
	}

	ev, err := Select(resp, mustDate(t, "2025-01-20"))
	require.NoError(t, err)

	found := ev.(AppointmentsFound)
	assert.Equal(t, "2025-01-14T16:00:00.000+01:00", found.Closest.Timestamp)
	assert.Equal(t, []string{"2025-01-11 12:30", "2025-01-14 08:00", "2025-01-14 16:00"}, found.AllFormattedTimes)
}

func TestSelect_LimitDateIsInclusive(t *testing.T) {
	resp := &availability.Response{
		Total: 1,
		Availabilities: []availability.DaySlots{
			{Date: "2025-01-20T00:00:00.000+01:00", Slots: []string{"2025-01-20T23:40:00.000+01:00"}},
		},
	}

	ev, err := Select(resp, mustDate(t, "2025-01-20"))
	require.NoError(t, err)
	assert.IsType(t, AppointmentsFound{}, ev)
}

func TestSelect_NoEvent(t *testing.T) {
	limit := mustDate(t, "2025-01-20")

	tests := []struct {
		name string
		resp *availability.Response
	}{
		{
			name: "total zero without next slot",
			resp: &availability.Response{Total: 0},
		},
		{
			name: "total zero with next slot after limit",
			resp: &availability.Response{Total: 0, NextSlot: "2025-01-21T08:00:00.000+01:00"},
		},
		{
			name: "appointments only after limit",
			resp: &availability.Response{
				Total: 2,
				Availabilities: []availability.DaySlots{
					{Date: "2025-01-21", Slots: []string{"2025-01-21T08:00:00.000+01:00"}},
					{Date: "2025-02-01", Slots: []string{"2025-02-01T08:00:00.000+01:00"}},
				},
			},
		},
		{
			name: "days within limit are all empty",
			resp: &availability.Response{
				Total: 1,
				Availabilities: []availability.DaySlots{
					{Date: "2025-01-12", Slots: []string{}},
					{Date: "2025-01-13", Slots: nil},
				},
			},
		},
		{
			name: "total positive ignores next slot",
			resp: &availability.Response{
				Total:    1,
				NextSlot: "2025-01-12T08:00:00.000+01:00",
				Availabilities: []availability.DaySlots{
					{Date: "2025-03-01", Slots: []string{"2025-03-01T08:00:00.000+01:00"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Select(tt.resp, limit)
			require.NoError(t, err)
			assert.Nil(t, ev)
		})
	}
}

func TestSelect_NextSlotFound(t *testing.T) {
	limit := mustDate(t, "2025-01-20")

	for _, ts := range []string{"2025-01-20T18:00:00.000+01:00", "2025-01-02T07:10:00.000+01:00"} {
		ev, err := Select(&availability.Response{Total: 0, NextSlot: ts}, limit)
		require.NoError(t, err)
		assert.Equal(t, NextSlotFound{Timestamp: ts}, ev)
	}
}

func TestSelect_MalformedValues(t *testing.T) {
	limit := mustDate(t, "2025-01-20")

	tests := []struct {
		name string
		resp *availability.Response
	}{
		{
			name: "bad day date",
			resp: &availability.Response{Total: 1, Availabilities: []availability.DaySlots{
				{Date: "soon", Slots: []string{"2025-01-12T08:00:00.000+01:00"}},
			}},
		},
		{
			name: "bad slot timestamp",
			resp: &availability.Response{Total: 1, Availabilities: []availability.DaySlots{
				{Date: "2025-01-12", Slots: []string{"2025-01-12 morning"}},
			}},
		},
		{
			name: "bad next slot",
			resp: &availability.Response{Total: 0, NextSlot: "2025-01-12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Select(tt.resp, limit)
			var perr *availability.ParseError
			assert.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
		})
	}
}

func TestSelect_EmptyDayWithBadDateIsSkipped(t *testing.T) {
	resp := &availability.Response{Total: 1, Availabilities: []availability.DaySlots{
		{Date: "??", Slots: nil},
		{Date: "2025-01-12", Slots: []string{"2025-01-12T08:00:00.000+01:00"}},
	}}

	ev, err := Select(resp, mustDate(t, "2025-01-20"))
	require.NoError(t, err)
	assert.IsType(t, AppointmentsFound{}, ev)
}
