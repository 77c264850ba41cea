// Package appointments defines the scheduling records and their persistence.
package appointments

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical wire/storage format for appointment dates.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical wire/storage format for slot times.
const TimeLayout = "15:04"

// Appointment is one booked 30-minute slot. At most one appointment may
// exist per (Date, Time) pair, enforced by the database.
type Appointment struct {
	ID          uuid.UUID
	ClientName  string
	Date        string // DateLayout
	Time        string // TimeLayout
	RequesterID string
	CreatedAt   time.Time
}

// Cancellation is an append-only audit record written whenever an
// appointment is removed through the cancellation flow.
type Cancellation struct {
	ID         uuid.UUID
	ClientName string
	Date       string
	Time       string
	Reason     string
	CreatedAt  time.Time
}

// Feedback is an append-only customer feedback record.
type Feedback struct {
	ID         uuid.UUID
	ClientName string
	Comment    string
	Rating     int
	CreatedAt  time.Time
}
