package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records booking guard decisions and trust score recomputes.
type BookingMetrics struct {
	decisions      *prometheus.CounterVec
	trustRecompute prometheus.Histogram
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_decisions_total",
		Help: "Booking guard decisions by outcome.",
	}, []string{"outcome"})
	trustRecompute := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trust_score_recompute_seconds",
		Help:    "Duration of trust score recomputation in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(decisions, trustRecompute)
	return &BookingMetrics{
		decisions:      decisions,
		trustRecompute: trustRecompute,
	}
}

// Booking guard outcomes.
const (
	OutcomeGranted       = "granted"
	OutcomeDateConflict  = "date_conflict"
	OutcomeSelfBooking   = "self_booking"
	OutcomeToolNotFound  = "tool_not_found"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeInternalError = "internal_error"
)

// IncDecision increments the decision counter for the given outcome.
func (b *BookingMetrics) IncDecision(outcome string) {
	if b == nil || b.decisions == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	b.decisions.WithLabelValues(outcome).Inc()
}

// ObserveTrustRecompute records how long a trust score recompute took.
func (b *BookingMetrics) ObserveTrustRecompute(duration time.Duration) {
	if b == nil || b.trustRecompute == nil {
		return
	}
	b.trustRecompute.Observe(duration.Seconds())
}
