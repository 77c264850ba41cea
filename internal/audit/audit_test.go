package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/pkg/logging"
)

func TestDumpAppointments(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&buf, logging.New("error"))

	id := uuid.New()
	created := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	err := svc.DumpAppointments(context.Background(), []appointments.Appointment{
		{ID: id, ClientName: "Joao", Date: "2025-12-25", Time: "09:00", RequesterID: "user-1", CreatedAt: created},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "cliente", "data", "horario", "requester", "criado_em"}, rows[0])
	assert.Equal(t, []string{id.String(), "Joao", "2025-12-25", "09:00", "user-1", "2025-12-18T08:00:00Z"}, rows[1])
}

func TestDumpCancellations(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&buf, logging.New("error"))

	id := uuid.New()
	created := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	err := svc.DumpCancellations(context.Background(), []appointments.Cancellation{
		{ID: id, ClientName: "Maria", Date: "2025-12-20", Time: "11:00", Reason: "cancelado pelo cliente", CreatedAt: created},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cancelado pelo cliente", rows[1][4])
}

func TestDumpEmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(&buf, logging.New("error"))

	require.NoError(t, svc.DumpAppointments(context.Background(), nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
