// Package reminder drives the scheduled notification and retention jobs.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/chat"
	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Driver runs the externally-triggered reminder and retention operations.
type Driver struct {
	repo    chat.Repository
	store   chat.StateStore
	sender  chat.Messenger
	metrics *metrics.ChatMetrics
	logger  *logging.Logger

	salonName string
	now       func() time.Time
}

// NewDriver wires the reminder driver.
func NewDriver(repo chat.Repository, store chat.StateStore, sender chat.Messenger, m *metrics.ChatMetrics, logger *logging.Logger, salonName string) *Driver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Driver{
		repo:      repo,
		store:     store,
		sender:    sender,
		metrics:   m,
		logger:    logger,
		salonName: salonName,
		now:       time.Now,
	}
}

// RunSameDay sends a reminder for every appointment dated today. It never
// touches conversation state.
func (d *Driver) RunSameDay(ctx context.Context) (int, error) {
	today := d.now().Format(appointments.DateLayout)
	appts, err := d.repo.FindByDate(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("reminder: same-day query: %w", err)
	}

	sent := 0
	for _, appt := range appts {
		msg := chat.SameDayReminder(appt.ClientName, appt.Time, d.salonName)
		if err := d.sender.Send(ctx, appt.RequesterID, msg); err != nil {
			d.logger.Warn("reminder: same-day send failed", "requester", appt.RequesterID, "error", err)
			continue
		}
		d.metrics.ObserveReminder("same_day")
		sent++
	}
	if sent > 0 {
		d.logger.Info("reminder: same-day reminders sent", "count", sent)
	}
	return sent, nil
}

// RunNextDay asks every requester with an appointment tomorrow to confirm
// presence, arming their conversation state so the next reply lands in the
// confirmation step.
func (d *Driver) RunNextDay(ctx context.Context) (int, error) {
	tomorrow := d.now().AddDate(0, 0, 1).Format(appointments.DateLayout)
	appts, err := d.repo.FindByDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("reminder: next-day query: %w", err)
	}

	sent := 0
	for _, appt := range appts {
		if err := d.sender.Send(ctx, appt.RequesterID, chat.PresencePrompt(appt.ClientName, appt.Time)); err != nil {
			d.logger.Warn("reminder: next-day send failed", "requester", appt.RequesterID, "error", err)
			continue
		}
		st := &chat.State{
			Step:          chat.StepAwaitPresence,
			Date:          appt.Date,
			Time:          appt.Time,
			PendingName:   appt.ClientName,
			LastContactAt: d.now(),
		}
		if err := d.store.SaveState(ctx, appt.RequesterID, st); err != nil {
			d.logger.Error("reminder: arm presence confirm failed", "requester", appt.RequesterID, "error", err)
			continue
		}
		d.metrics.ObserveReminder("next_day")
		sent++
	}
	if sent > 0 {
		d.logger.Info("reminder: next-day confirmations sent", "count", sent)
	}
	return sent, nil
}

// RunRetention deletes appointments older than 30 days. Cancellations and
// feedback are kept.
func (d *Driver) RunRetention(ctx context.Context) (int64, error) {
	cutoff := d.now().AddDate(0, 0, -30).Format(appointments.DateLayout)
	removed, err := d.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reminder: retention sweep: %w", err)
	}
	if removed > 0 {
		d.logger.Info("reminder: retention sweep completed", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
