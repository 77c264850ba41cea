package reminder

import (
	"context"
	"time"

	"github.com/agendazap/agendazap/pkg/logging"
)

const (
	reminderHour  = 9
	retentionHour = 0
)

// Worker schedules the daily reminder and retention passes. Same-day
// reminders also run once at startup so a mid-morning restart does not skip
// the day.
type Worker struct {
	driver *Driver
	logger *logging.Logger
	now    func() time.Time
}

// NewWorker creates the daily job worker.
func NewWorker(driver *Driver, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{driver: driver, logger: logger, now: time.Now}
}

// Run blocks until the context is cancelled, firing the daily passes at their
// scheduled hours.
func (w *Worker) Run(ctx context.Context) {
	if _, err := w.driver.RunSameDay(ctx); err != nil {
		w.logger.Error("reminder: startup same-day pass failed", "error", err)
	}

	for {
		reminderTimer := time.NewTimer(time.Until(nextAt(w.now(), reminderHour)))
		retentionTimer := time.NewTimer(time.Until(nextAt(w.now(), retentionHour)))

		select {
		case <-ctx.Done():
			reminderTimer.Stop()
			retentionTimer.Stop()
			return
		case <-reminderTimer.C:
			retentionTimer.Stop()
			if _, err := w.driver.RunSameDay(ctx); err != nil {
				w.logger.Error("reminder: same-day pass failed", "error", err)
			}
			if _, err := w.driver.RunNextDay(ctx); err != nil {
				w.logger.Error("reminder: next-day pass failed", "error", err)
			}
		case <-retentionTimer.C:
			reminderTimer.Stop()
			if _, err := w.driver.RunRetention(ctx); err != nil {
				w.logger.Error("reminder: retention pass failed", "error", err)
			}
		}
	}
}

// nextAt returns the next occurrence of the given wall-clock hour, strictly
// after now.
func nextAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
