package chat

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/schedule"
	"github.com/agendazap/agendazap/internal/validate"
)

// book runs the booking checks in order, short-circuiting on the first
// failure. Validation and business-hour failures re-arm time entry; a slot
// conflict re-arms date entry; the booking limit drops back to the menu. On
// success the confirmation turn is carried by the messages pushed through the
// Messenger, so the returned reply is empty.
func (m *Machine) book(ctx context.Context, requesterID, name, dateISO, timeStr string) (string, error) {
	day, err := time.ParseInLocation(appointments.DateLayout, dateISO, m.now().Location())
	if err != nil {
		m.logger.Error("chat: booking with malformed date", "requester", requesterID, "date", dateISO)
		return m.bookingFailure(ctx, requesterID, err)
	}

	if !validate.ValidTime(timeStr) {
		m.metrics.ObserveBooking("invalid_time")
		m.rearmTime(ctx, requesterID, dateISO)
		return msgInvalidTime + "\n\n" + msgAskTime, nil
	}

	hour, _ := strconv.Atoi(timeStr[:2])
	minute, _ := strconv.Atoi(timeStr[3:])
	if !schedule.WithinHours(day, hour) {
		m.metrics.ObserveBooking("outside_hours")
		m.rearmTime(ctx, requesterID, dateISO)
		return msgOutsideHours + "\n\n" + msgAskTime, nil
	}

	slotAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, m.now().Location())
	if slotAt.Before(m.now()) {
		m.metrics.ObserveBooking("in_past")
		m.rearmTime(ctx, requesterID, dateISO)
		return msgPastDateTime + "\n\n" + msgAskTime, nil
	}

	count, err := m.repo.CountByRequester(ctx, requesterID)
	if err != nil {
		return m.bookingFailure(ctx, requesterID, err)
	}
	if count >= maxActiveAppointments {
		m.metrics.ObserveBooking("limit_reached")
		return msgLimitReached + "\n\n" + MenuText, nil
	}

	// Pre-check gives the friendly path; the repository's uniqueness
	// guarantee is what actually decides the race.
	if _, err := m.repo.FindByDateTime(ctx, dateISO, timeStr); err == nil {
		return m.slotConflict(ctx, requesterID)
	} else if !errors.Is(err, appointments.ErrNotFound) {
		return m.bookingFailure(ctx, requesterID, err)
	}

	appt := appointments.Appointment{
		ClientName:  name,
		Date:        dateISO,
		Time:        timeStr,
		RequesterID: requesterID,
	}
	if err := m.repo.Create(ctx, appt); err != nil {
		if errors.Is(err, appointments.ErrSlotTaken) {
			return m.slotConflict(ctx, requesterID)
		}
		return m.bookingFailure(ctx, requesterID, err)
	}

	dateBR := day.Format("02/01/2006")
	if err := m.sender.Send(ctx, m.adminID, adminBookingNotice(name, dateBR, timeStr)); err != nil {
		m.logger.Warn("chat: admin booking notice failed", "requester", requesterID, "error", err)
	}
	if listing, err := m.dayListing(ctx, day, requesterID); err != nil {
		m.logger.Warn("chat: post-booking listing failed", "requester", requesterID, "error", err)
	} else if err := m.sender.Send(ctx, requesterID, listing); err != nil {
		m.logger.Warn("chat: post-booking listing send failed", "requester", requesterID, "error", err)
	}
	if err := m.sender.Send(ctx, requesterID, bookingConfirmation(name, dateBR, timeStr, m.salonAddress)); err != nil {
		m.logger.Warn("chat: booking confirmation send failed", "requester", requesterID, "error", err)
	}
	if err := m.store.MarkRecentBooking(ctx, requesterID); err != nil {
		m.logger.Warn("chat: mark recent booking failed", "requester", requesterID, "error", err)
	}

	m.metrics.ObserveBooking("confirmed")
	m.logger.Info("chat: appointment booked",
		"requester", requesterID,
		"date", dateISO,
		"time", timeStr,
	)
	return "", nil
}

func (m *Machine) slotConflict(ctx context.Context, requesterID string) (string, error) {
	m.metrics.ObserveBooking("conflict")
	m.rearmDate(ctx, requesterID)
	return msgSlotTaken + "\n\n" + msgAskDate, nil
}

func (m *Machine) bookingFailure(ctx context.Context, requesterID string, err error) (string, error) {
	m.logger.Error("chat: booking failed", "requester", requesterID, "error", err)
	m.metrics.ObserveBooking("error")
	m.rearmDate(ctx, requesterID)
	return msgTryAgain + "\n\n" + msgAskDate, nil
}

func (m *Machine) rearmTime(ctx context.Context, requesterID, dateISO string) {
	m.arm(ctx, requesterID, &State{Step: StepAwaitTime, Date: dateISO})
}

func (m *Machine) rearmDate(ctx context.Context, requesterID string) {
	m.arm(ctx, requesterID, &State{Step: StepAwaitDate})
}
