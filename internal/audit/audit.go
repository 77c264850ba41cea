// Package audit renders admin report dumps as CSV for the logging collaborator.
package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Service writes CSV dumps to the audit writer. Dumps are emitted as a side
// channel of the admin report; they are never returned to the chat caller.
type Service struct {
	mu     sync.Mutex
	out    io.Writer
	logger *logging.Logger
}

// NewService creates an audit service. A nil writer defaults to stdout.
func NewService(out io.Writer, logger *logging.Logger) *Service {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{out: out, logger: logger}
}

// DumpAppointments writes the active appointments as CSV.
func (s *Service) DumpAppointments(_ context.Context, appts []appointments.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := csv.NewWriter(s.out)
	if err := w.Write([]string{"id", "cliente", "data", "horario", "requester", "criado_em"}); err != nil {
		return fmt.Errorf("audit: write header: %w", err)
	}
	for _, a := range appts {
		row := []string{a.ID.String(), a.ClientName, a.Date, a.Time, a.RequesterID, a.CreatedAt.UTC().Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("audit: write appointment: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("audit: flush appointments: %w", err)
	}
	s.logger.Info("audit: appointments dumped", "count", len(appts))
	return nil
}

// DumpCancellations writes the cancellation trail as CSV.
func (s *Service) DumpCancellations(_ context.Context, recs []appointments.Cancellation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := csv.NewWriter(s.out)
	if err := w.Write([]string{"id", "cliente", "data", "horario", "motivo", "criado_em"}); err != nil {
		return fmt.Errorf("audit: write header: %w", err)
	}
	for _, r := range recs {
		row := []string{r.ID.String(), r.ClientName, r.Date, r.Time, r.Reason, r.CreatedAt.UTC().Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("audit: write cancellation: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("audit: flush cancellations: %w", err)
	}
	s.logger.Info("audit: cancellations dumped", "count", len(recs))
	return nil
}
