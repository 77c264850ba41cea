package chat

import (
	"context"
	"errors"

	"github.com/agendazap/agendazap/internal/appointments"
)

// cancelReason is the fixed audit-trail reason for user-driven cancellations.
const cancelReason = "cancelado pelo cliente"

// cancel removes the appointment matching (name, date, time) exactly, writes
// the cancellation record and notifies the admin. Matching is case-sensitive
// with no fuzzing.
func (m *Machine) cancel(ctx context.Context, requesterID, name, dateISO, timeStr string) (string, error) {
	err := m.repo.DeleteByNameDateTime(ctx, name, dateISO, timeStr)
	if errors.Is(err, appointments.ErrNotFound) {
		return msgNotFound + "\n\n" + MenuText, nil
	}
	if err != nil {
		m.logger.Error("chat: cancellation failed", "requester", requesterID, "error", err)
		return msgTryAgain, nil
	}

	rec := appointments.Cancellation{
		ClientName: name,
		Date:       dateISO,
		Time:       timeStr,
		Reason:     cancelReason,
	}
	if err := m.repo.InsertCancellation(ctx, rec); err != nil {
		// The slot is already freed; the missing audit row is only logged.
		m.logger.Error("chat: cancellation record failed", "requester", requesterID, "error", err)
	}

	dateBR := formatBR(dateISO)
	if err := m.sender.Send(ctx, m.adminID, adminCancelNotice(name, dateBR, timeStr)); err != nil {
		m.logger.Warn("chat: admin cancel notice failed", "requester", requesterID, "error", err)
	}

	m.logger.Info("chat: appointment cancelled",
		"requester", requesterID,
		"date", dateISO,
		"time", timeStr,
	)
	return msgCancelOK + "\n\n" + MenuText, nil
}
