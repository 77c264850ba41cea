package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/appointments"
)

// 2025-12-25 is a Thursday, 2025-12-27 a Saturday.
var (
	weekday  = time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)
)

func TestOpeningHours(t *testing.T) {
	open, close := OpeningHours(weekday)
	assert.Equal(t, 9, open)
	assert.Equal(t, 20, close)

	open, close = OpeningHours(saturday)
	assert.Equal(t, 10, open)
	assert.Equal(t, 16, close)
}

func TestWithinHours(t *testing.T) {
	assert.True(t, WithinHours(weekday, 9))
	assert.True(t, WithinHours(weekday, 19))
	assert.False(t, WithinHours(weekday, 8))
	assert.False(t, WithinHours(weekday, 20))

	assert.True(t, WithinHours(saturday, 10))
	assert.False(t, WithinHours(saturday, 16))
	assert.False(t, WithinHours(saturday, 9))
}

func TestSlotsOrderedAndAligned(t *testing.T) {
	slots := Slots(weekday)
	require.Len(t, slots, 22)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "19:30", slots[len(slots)-1])

	slots = Slots(saturday)
	require.Len(t, slots, 12)
	assert.Equal(t, "10:00", slots[0])
	assert.Equal(t, "15:30", slots[len(slots)-1])
}

func TestDayListingMarksBookedSlots(t *testing.T) {
	appts := []appointments.Appointment{
		{ClientName: "Joao", Date: "2025-12-25", Time: "09:30"},
	}

	listing := DayListing(weekday, appts, false)
	lines := strings.Split(listing, "\n")
	require.Len(t, lines, 23) // header + 22 slots
	assert.Equal(t, "Agenda de 25/12/2025:", lines[0])
	assert.Equal(t, "09:00 - livre", lines[1])
	assert.Equal(t, "09:30 - ocupado", lines[2])
	assert.NotContains(t, listing, "Joao")
}

func TestDayListingShowsNamesForAdmin(t *testing.T) {
	appts := []appointments.Appointment{
		{ClientName: "Joao", Date: "2025-12-25", Time: "09:30"},
	}

	listing := DayListing(weekday, appts, true)
	assert.Contains(t, listing, "09:30 - ocupado (Joao)")
}
