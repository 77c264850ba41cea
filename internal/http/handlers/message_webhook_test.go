package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/chat"
	"github.com/agendazap/agendazap/pkg/logging"
)

type noopMessenger struct{}

func (noopMessenger) Send(context.Context, string, string) error { return nil }

type noopSink struct{}

func (noopSink) DumpAppointments(context.Context, []appointments.Appointment) error { return nil }
func (noopSink) DumpCancellations(context.Context, []appointments.Cancellation) error {
	return nil
}

func newHandler(t *testing.T) *MessageWebhookHandler {
	t.Helper()
	machine := chat.NewMachine(
		chat.NewMemoryStore(),
		appointments.NewMemoryRepository(),
		noopMessenger{},
		noopSink{},
		nil,
		logging.New("error"),
		chat.Options{AdminID: "admin-1", SalonName: "Salão Teste", SalonAddress: "Rua A, 10"},
	)
	return NewMessageWebhookHandler(machine, logging.New("error"))
}

func postMessage(t *testing.T, h *MessageWebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/message", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandleReturnsReply(t *testing.T) {
	h := newHandler(t)

	rec := postMessage(t, h, `{"sender":"user-1","text":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var reply webhookReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Contains(t, reply.Reply, "Informe a data")
}

func TestHandleEmptyReplyIsNoContent(t *testing.T) {
	h := newHandler(t)

	// Opening a side conversation makes the following message reply nothing.
	rec := postMessage(t, h, `{"sender":"user-1","text":"6"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postMessage(t, h, `{"sender":"user-1","text":"qualquer coisa"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleRejectsBadPayload(t *testing.T) {
	h := newHandler(t)

	rec := postMessage(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMessage(t, h, `{"sender":"  ","text":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
