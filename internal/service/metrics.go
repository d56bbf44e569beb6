package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics exposes allocation counters and the occupancy gauge. A nil
// receiver is a no-op so tests can run the engine unregistered.
type EngineMetrics struct {
	ticketsIssued   prometheus.Counter
	ticketsRejected *prometheus.CounterVec
	payments        *prometheus.CounterVec
	occupiedSpots   prometheus.Gauge
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	factory := promauto.With(reg)
	return &EngineMetrics{
		ticketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "parking_tickets_issued_total",
			Help: "Tickets successfully issued.",
		}),
		ticketsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_tickets_rejected_total",
			Help: "Entrance requests rejected, by reason.",
		}, []string{"reason"}),
		payments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_payments_total",
			Help: "Payment attempts, by outcome.",
		}, []string{"status"}),
		occupiedSpots: factory.NewGauge(prometheus.GaugeOpts{
			Name: "parking_spots_occupied",
			Help: "Spots currently occupied.",
		}),
	}
}

func (m *EngineMetrics) TicketIssued() {
	if m != nil {
		m.ticketsIssued.Inc()
	}
}

func (m *EngineMetrics) TicketRejected(reason string) {
	if m != nil {
		m.ticketsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *EngineMetrics) PaymentAttempt(status string) {
	if m != nil {
		m.payments.WithLabelValues(status).Inc()
	}
}

func (m *EngineMetrics) SetOccupied(n int) {
	if m != nil {
		m.occupiedSpots.Set(float64(n))
	}
}
