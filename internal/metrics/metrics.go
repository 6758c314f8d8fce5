// Package metrics exposes Prometheus counters for reservation activity.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slot_reservation"

// Reservation outcomes.
const (
	OutcomeReserved = "reserved"
	OutcomeTaken    = "taken"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Admin slot actions.
const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"
	ActionManual  = "manual"
	ActionReset   = "reset"
)

// Metrics holds the service collectors.
type Metrics struct {
	reservations  *prometheus.CounterVec
	slotActions   *prometheus.CounterVec
	broadcasts    prometheus.Counter
	pushDelivered prometheus.Counter
	streams       *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Reservation attempts by outcome.",
		}, []string{"outcome"}),
		slotActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_actions_total",
			Help:      "Administrative slot transitions by action.",
		}, []string{"action"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_broadcasts_total",
			Help:      "Push broadcasts posted.",
		}),
		pushDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_tokens_delivered_total",
			Help:      "Device tokens included in posted broadcasts.",
		}),
		streams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_streams",
			Help:      "Live snapshot streams currently open.",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.reservations, m.slotActions, m.broadcasts, m.pushDelivered, m.streams)
	return m
}

// Reservation counts one reservation attempt.
func (m *Metrics) Reservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

// SlotAction counts one administrative transition.
func (m *Metrics) SlotAction(action string) {
	if m == nil {
		return
	}
	m.slotActions.WithLabelValues(action).Inc()
}

// Broadcast counts one posted broadcast and its recipients.
func (m *Metrics) Broadcast(tokens int) {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
	m.pushDelivered.Add(float64(tokens))
}

// StreamOpened tracks a new live stream on topic and returns the func that closes it.
func (m *Metrics) StreamOpened(topic string) func() {
	if m == nil {
		return func() {}
	}
	g := m.streams.WithLabelValues(topic)
	g.Inc()
	return g.Dec
}
