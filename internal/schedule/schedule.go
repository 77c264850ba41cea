// Package schedule computes the salon's bookable slots for a given day.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
)

// OpeningHours returns the opening and closing hour for the date's weekday.
// Saturdays run 10:00-16:00, every other day 09:00-20:00.
func OpeningHours(date time.Time) (open, close int) {
	if date.Weekday() == time.Saturday {
		return 10, 16
	}
	return 9, 20
}

// WithinHours reports whether the hour falls inside the date's business hours.
// The check is hour-granular: the closing hour itself is not bookable.
func WithinHours(date time.Time, hour int) bool {
	open, close := OpeningHours(date)
	return hour >= open && hour < close
}

// Slots returns the ordered 30-minute slot labels for the date, from opening
// to closing, closing exclusive.
func Slots(date time.Time) []string {
	open, close := OpeningHours(date)
	out := make([]string, 0, (close-open)*2)
	for h := open; h < close; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return out
}

// DayListing renders the day's slots with their booked/free status. When
// showNames is true (admin), booked slots carry the occupant's name. The
// format is a stable contract; callers append their own prompt or menu text.
func DayListing(date time.Time, appts []appointments.Appointment, showNames bool) string {
	byTime := make(map[string]appointments.Appointment, len(appts))
	for _, appt := range appts {
		byTime[appt.Time] = appt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Agenda de %s:\n", date.Format("02/01/2006"))
	for _, slot := range Slots(date) {
		appt, booked := byTime[slot]
		switch {
		case booked && showNames:
			fmt.Fprintf(&b, "%s - ocupado (%s)\n", slot, appt.ClientName)
		case booked:
			fmt.Fprintf(&b, "%s - ocupado\n", slot)
		default:
			fmt.Fprintf(&b, "%s - livre\n", slot)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
