package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters for the conversation and scheduling flows.
type ChatMetrics struct {
	inboundTotal    *prometheus.CounterVec
	bookingsTotal   *prometheus.CounterVec
	remindersTotal  *prometheus.CounterVec
	sessionsExpired *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "chat",
			Name:      "inbound_total",
			Help:      "Total inbound chat messages by routing outcome",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "chat",
			Name:      "bookings_total",
			Help:      "Total booking attempts by result",
		}, []string{"result"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "reminder",
			Name:      "sent_total",
			Help:      "Total reminder messages sent by kind",
		}, []string{"kind"}),
		sessionsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendazap",
			Subsystem: "chat",
			Name:      "sessions_expired_total",
			Help:      "Total idle sessions expired by the sweeper",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.bookingsTotal, m.remindersTotal, m.sessionsExpired)
	return m
}

func (m *ChatMetrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *ChatMetrics) ObserveReminder(kind string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(kind).Inc()
}

func (m *ChatMetrics) ObserveExpired(kind string) {
	if m == nil {
		return
	}
	m.sessionsExpired.WithLabelValues(kind).Inc()
}
