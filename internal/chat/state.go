// Package chat implements the per-user conversation state machine that turns
// inbound messages into scheduling actions.
package chat

import (
	"context"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
)

// Step identifies a requester's position inside a multi-turn flow. An absent
// state means the requester is at the top-level menu.
type Step string

const (
	StepAwaitDate     Step = "await_date"
	StepAwaitTime     Step = "await_time"
	StepAwaitName     Step = "await_name"
	StepAwaitCancel   Step = "await_cancel"
	StepAwaitPresence Step = "await_presence"
)

// State is the ephemeral conversation state for one requester.
type State struct {
	Step          Step      `json:"step"`
	Date          string    `json:"date,omitempty"` // appointments.DateLayout
	Time          string    `json:"time,omitempty"`
	PendingName   string    `json:"pending_name,omitempty"`
	LastContactAt time.Time `json:"last_contact_at"`
}

// SideSession marks a requester as being in freeform side-conversation mode.
// While present, all messages bypass the state machine.
type SideSession struct {
	LastContactAt time.Time `json:"last_contact_at"`
}

const (
	// StateIdleAfter is how long a conversation state survives without contact.
	StateIdleAfter = 10 * time.Minute
	// SessionIdleAfter is how long a side-conversation survives without contact.
	SessionIdleAfter = 7 * time.Minute
	// RecentBookingTTL is the window during which the next message after a
	// booking is swallowed into a bare menu redisplay.
	RecentBookingTTL = 60 * time.Second

	maxActiveAppointments = 3
)

// StateStore keeps per-requester conversation state, side sessions and the
// recently-booked suppression marker. Backings must key strictly by requester.
type StateStore interface {
	State(ctx context.Context, requesterID string) (*State, error)
	SaveState(ctx context.Context, requesterID string, st *State) error
	ClearState(ctx context.Context, requesterID string) error

	Session(ctx context.Context, requesterID string) (*SideSession, error)
	SaveSession(ctx context.Context, requesterID string, s *SideSession) error
	ClearSession(ctx context.Context, requesterID string) error

	MarkRecentBooking(ctx context.Context, requesterID string) error
	ConsumeRecentBooking(ctx context.Context, requesterID string) (bool, error)

	// ExpireStates drops conversation states idle since before olderThan.
	ExpireStates(ctx context.Context, olderThan time.Time) (int, error)
	// ExpireSessions drops idle side sessions and returns the affected
	// requester IDs so the caller can emit the idle-termination message.
	ExpireSessions(ctx context.Context, olderThan time.Time) ([]string, error)
}

// Repository is the persistence contract the flows consume.
type Repository interface {
	Create(ctx context.Context, appt appointments.Appointment) error
	CountByRequester(ctx context.Context, requesterID string) (int, error)
	FindByDateTime(ctx context.Context, date, timeStr string) (*appointments.Appointment, error)
	FindByDate(ctx context.Context, date string) ([]appointments.Appointment, error)
	FindFrom(ctx context.Context, date string) ([]appointments.Appointment, error)
	DeleteByNameDateTime(ctx context.Context, name, date, timeStr string) error
	DeleteOlderThan(ctx context.Context, date string) (int64, error)
	InsertCancellation(ctx context.Context, rec appointments.Cancellation) error
	ListCancellations(ctx context.Context) ([]appointments.Cancellation, error)
	InsertFeedback(ctx context.Context, fb appointments.Feedback) error
}

// Messenger sends outbound messages through the transport gateway.
type Messenger interface {
	Send(ctx context.Context, to, text string) error
}

// ReportSink receives the CSV dumps produced by the admin report.
type ReportSink interface {
	DumpAppointments(ctx context.Context, appts []appointments.Appointment) error
	DumpCancellations(ctx context.Context, recs []appointments.Cancellation) error
}
