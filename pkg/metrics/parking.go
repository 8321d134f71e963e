package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "parking"

// Booking outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNoSpot      = "no_spot"
	OutcomeConflict    = "conflict"
	OutcomeNotFound    = "not_found"
	OutcomeFailed      = "error"
	OutcomeAlreadyDone = "already_closed"
)

// ParkingMetrics tracks booking traffic and revenue.
type ParkingMetrics struct {
	bookings *prometheus.CounterVec
	releases *prometheus.CounterVec
	revenue  prometheus.Counter
	sessions prometheus.Histogram
}

// NewParkingMetrics registers the parking metrics on reg. A nil registerer
// yields a no-op recorder so services can be built without metrics in tests.
func NewParkingMetrics(reg prometheus.Registerer) *ParkingMetrics {
	if reg == nil {
		return &ParkingMetrics{}
	}
	m := &ParkingMetrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts partitioned by outcome.",
		}, []string{"outcome"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Release attempts partitioned by outcome.",
		}, []string{"outcome"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Revenue collected from closed reservations.",
		}),
		sessions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of closed reservations in seconds.",
			Buckets:   []float64{300, 900, 1800, 3600, 7200, 14400, 28800, 86400},
		}),
	}
	reg.MustRegister(m.bookings, m.releases, m.revenue, m.sessions)
	return m
}

func (m *ParkingMetrics) BookingOutcome(outcome string) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *ParkingMetrics) ReleaseOutcome(outcome string) {
	if m == nil || m.releases == nil {
		return
	}
	m.releases.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// SessionClosed records the revenue and duration of a released reservation.
func (m *ParkingMetrics) SessionClosed(cost decimal.Decimal, duration time.Duration) {
	if m == nil || m.revenue == nil {
		return
	}
	amount, _ := cost.Float64()
	if amount > 0 {
		m.revenue.Add(amount)
	}
	if duration < 0 {
		duration = 0
	}
	m.sessions.Observe(duration.Seconds())
}
