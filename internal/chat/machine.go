package chat

import (
	"context"
	"strings"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/internal/validate"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Machine routes each inbound message by the requester's current step (or the
// top-level menu) and produces the reply. An empty reply means "send nothing":
// the turn was satisfied by messages the flow already pushed through the
// Messenger.
type Machine struct {
	store   StateStore
	repo    Repository
	sender  Messenger
	side    *SideChat
	reports ReportSink
	metrics *metrics.ChatMetrics
	logger  *logging.Logger

	adminID      string
	salonName    string
	salonAddress string
	now          func() time.Time
}

// Options carries the static business identity of the deployment.
type Options struct {
	AdminID      string
	SalonName    string
	SalonAddress string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewMachine wires the conversation state machine.
func NewMachine(store StateStore, repo Repository, sender Messenger, reports ReportSink, m *metrics.ChatMetrics, logger *logging.Logger, opts Options) *Machine {
	if logger == nil {
		logger = logging.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	side := NewSideChat(store, logger)
	side.now = now
	return &Machine{
		store:        store,
		repo:         repo,
		sender:       sender,
		side:         side,
		reports:      reports,
		metrics:      m,
		logger:       logger,
		adminID:      opts.AdminID,
		salonName:    opts.SalonName,
		salonAddress: opts.SalonAddress,
		now:          now,
	}
}

// HandleIncoming is the core entry point consumed by the transport edge.
func (m *Machine) HandleIncoming(ctx context.Context, requesterID, text string) (string, error) {
	text = strings.TrimSpace(text)

	// An active side conversation owns the requester outright.
	reply, handled, err := m.side.Handle(ctx, requesterID, text)
	if err != nil {
		m.logger.Error("chat: side conversation failed", "requester", requesterID, "error", err)
		m.metrics.ObserveInbound("error")
		return msgTryAgain, nil
	}
	if handled {
		m.metrics.ObserveInbound("side")
		return reply, nil
	}

	// Swallow the transport echo that follows a fresh booking.
	consumed, err := m.store.ConsumeRecentBooking(ctx, requesterID)
	if err != nil {
		m.logger.Warn("chat: consume booking marker failed", "requester", requesterID, "error", err)
	} else if consumed {
		m.metrics.ObserveInbound("suppressed")
		return MenuText, nil
	}

	lower := strings.ToLower(text)

	// Free-form commands cut through whatever step is armed.
	switch {
	case strings.HasPrefix(lower, "triagem"):
		m.metrics.ObserveInbound("command")
		return m.handleTriage(text), nil
	case strings.HasPrefix(lower, "feedback"):
		m.metrics.ObserveInbound("command")
		return m.handleFeedback(ctx, text)
	case lower == "relatorio" || lower == "relatório":
		m.metrics.ObserveInbound("command")
		return m.handleReport(ctx, requesterID)
	}

	st, err := m.store.State(ctx, requesterID)
	if err != nil {
		m.logger.Error("chat: load state failed", "requester", requesterID, "error", err)
		m.metrics.ObserveInbound("error")
		return msgTryAgain, nil
	}

	if st != nil && st.Step != "" {
		if lower == "sair" {
			if err := m.store.ClearState(ctx, requesterID); err != nil {
				m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
			}
			m.metrics.ObserveInbound("quit")
			return msgBackToMenu + "\n\n" + MenuText, nil
		}
		m.metrics.ObserveInbound("step")
		return m.handleStep(ctx, requesterID, st, text)
	}

	m.metrics.ObserveInbound("menu")
	return m.handleMenu(ctx, requesterID, text)
}

func (m *Machine) handleMenu(ctx context.Context, requesterID, text string) (string, error) {
	switch text {
	case "1":
		m.arm(ctx, requesterID, &State{Step: StepAwaitDate})
		return msgAskDate, nil
	case "2":
		m.arm(ctx, requesterID, &State{Step: StepAwaitCancel})
		return msgAskCancel, nil
	case "3":
		listing, err := m.dayListing(ctx, m.now(), requesterID)
		if err != nil {
			m.logger.Error("chat: today listing failed", "requester", requesterID, "error", err)
			return msgTryAgain, nil
		}
		return listing + "\n\n" + MenuText, nil
	case "4":
		return msgHours + "\n\n" + MenuText, nil
	case "5":
		return addressText(m.salonAddress) + "\n\n" + MenuText, nil
	case "6":
		welcome, err := m.side.Start(ctx, requesterID)
		if err != nil {
			m.logger.Error("chat: side conversation start failed", "requester", requesterID, "error", err)
			return msgTryAgain, nil
		}
		return welcome, nil
	case "7":
		if err := m.store.ClearState(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
		}
		if err := m.store.ClearSession(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear session failed", "requester", requesterID, "error", err)
		}
		return msgFarewell, nil
	default:
		return MenuText, nil
	}
}

func (m *Machine) handleStep(ctx context.Context, requesterID string, st *State, text string) (string, error) {
	switch st.Step {
	case StepAwaitDate:
		return m.stepDate(ctx, requesterID, st, text)
	case StepAwaitTime:
		return m.stepTime(ctx, requesterID, st, text)
	case StepAwaitName:
		if err := m.store.ClearState(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
		}
		return m.book(ctx, requesterID, text, st.Date, st.Time)
	case StepAwaitCancel:
		return m.stepCancel(ctx, requesterID, st, text)
	case StepAwaitPresence:
		return m.stepPresence(ctx, requesterID, st, text)
	default:
		// Unknown step, e.g. after a rollout change: reset to the menu.
		if err := m.store.ClearState(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
		}
		return MenuText, nil
	}
}

func (m *Machine) stepDate(ctx context.Context, requesterID string, st *State, text string) (string, error) {
	if !validate.ValidDate(text) {
		m.touch(ctx, requesterID, st)
		return msgInvalidDate, nil
	}
	day, err := time.Parse("02/01/2006", text)
	if err != nil {
		m.touch(ctx, requesterID, st)
		return msgInvalidDate, nil
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, m.now().Location())
	if day.Before(dateOnly(m.now())) {
		m.touch(ctx, requesterID, st)
		return msgPastDate, nil
	}

	st.Date = day.Format(appointments.DateLayout)
	st.Step = StepAwaitTime
	st.LastContactAt = m.now()
	if err := m.store.SaveState(ctx, requesterID, st); err != nil {
		m.logger.Error("chat: save state failed", "requester", requesterID, "error", err)
		return msgTryAgain, nil
	}

	listing, err := m.dayListing(ctx, day, requesterID)
	if err != nil {
		m.logger.Error("chat: day listing failed", "requester", requesterID, "error", err)
		m.rearmDate(ctx, requesterID)
		return msgTryAgain + "\n\n" + msgAskDate, nil
	}
	return listing + "\n\n" + msgAskTime, nil
}

func (m *Machine) stepTime(ctx context.Context, requesterID string, st *State, text string) (string, error) {
	if !validate.ValidTime(text) {
		m.touch(ctx, requesterID, st)
		return msgInvalidTime, nil
	}
	st.Time = text
	st.Step = StepAwaitName
	st.LastContactAt = m.now()
	if err := m.store.SaveState(ctx, requesterID, st); err != nil {
		m.logger.Error("chat: save state failed", "requester", requesterID, "error", err)
		return msgTryAgain, nil
	}
	return msgAskName, nil
}

func (m *Machine) stepCancel(ctx context.Context, requesterID string, st *State, text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		m.touch(ctx, requesterID, st)
		return msgCancelFormat, nil
	}
	name, timeStr := fields[0], fields[1]
	if !validate.ValidTime(timeStr) {
		m.touch(ctx, requesterID, st)
		return msgInvalidTime, nil
	}
	if err := m.store.ClearState(ctx, requesterID); err != nil {
		m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
	}
	today := dateOnly(m.now()).Format(appointments.DateLayout)
	return m.cancel(ctx, requesterID, name, today, timeStr)
}

func (m *Machine) stepPresence(ctx context.Context, requesterID string, st *State, text string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "sim", "yes":
		if err := m.store.ClearState(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
		}
		return msgPresenceYes, nil
	case "não", "nao", "no":
		if err := m.store.ClearState(ctx, requesterID); err != nil {
			m.logger.Warn("chat: clear state failed", "requester", requesterID, "error", err)
		}
		return m.cancel(ctx, requesterID, st.PendingName, st.Date, st.Time)
	default:
		// Re-prompt without consuming the armed confirmation.
		m.touch(ctx, requesterID, st)
		return msgPresenceAgain, nil
	}
}

// dayListing renders the availability listing for a date; occupant names are
// disclosed only to the admin identity.
func (m *Machine) dayListing(ctx context.Context, date time.Time, requesterID string) (string, error) {
	appts, err := m.repo.FindByDate(ctx, date.Format(appointments.DateLayout))
	if err != nil {
		return "", err
	}
	return schedule.DayListing(date, appts, requesterID == m.adminID), nil
}

// arm replaces the requester's state with a fresh one at the given step.
func (m *Machine) arm(ctx context.Context, requesterID string, st *State) {
	st.LastContactAt = m.now()
	if err := m.store.SaveState(ctx, requesterID, st); err != nil {
		m.logger.Error("chat: save state failed", "requester", requesterID, "error", err)
	}
}

// touch refreshes the idle clock while keeping the requester on the same step.
func (m *Machine) touch(ctx context.Context, requesterID string, st *State) {
	st.LastContactAt = m.now()
	if err := m.store.SaveState(ctx, requesterID, st); err != nil {
		m.logger.Warn("chat: refresh state failed", "requester", requesterID, "error", err)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatBR(dateISO string) string {
	day, err := time.Parse(appointments.DateLayout, dateISO)
	if err != nil {
		return dateISO
	}
	return day.Format("02/01/2006")
}
