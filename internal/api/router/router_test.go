package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/internal/appointments"
	"github.com/agendazap/agendazap/internal/chat"
	"github.com/agendazap/agendazap/internal/http/handlers"
	"github.com/agendazap/agendazap/pkg/logging"
)

type noopMessenger struct{}

func (noopMessenger) Send(context.Context, string, string) error { return nil }

type noopSink struct{}

func (noopSink) DumpAppointments(context.Context, []appointments.Appointment) error { return nil }
func (noopSink) DumpCancellations(context.Context, []appointments.Cancellation) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	machine := chat.NewMachine(
		chat.NewMemoryStore(),
		appointments.NewMemoryRepository(),
		noopMessenger{},
		noopSink{},
		nil,
		logging.New("error"),
		chat.Options{},
	)
	return New(&Config{
		Logger:         logging.New("error"),
		MessageWebhook: handlers.NewMessageWebhookHandler(machine, logging.New("error")),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsMounted(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookRouted(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/message", nil))
	// Empty body decodes to EOF and is rejected by the handler, proving the
	// route is wired.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
