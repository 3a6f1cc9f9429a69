package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	AgenciesEnrolled   prometheus.Counter
	SubjectsRegistered prometheus.Counter
	SubjectsBanned     prometheus.Counter
	Attestations       *prometheus.CounterVec
	AttestDuration     prometheus.Histogram
	RegisterDuration   prometheus.Histogram
}

// New creates a Metrics instance with all registry metrics registered on the
// default registerer.
func New() *Metrics {
	return &Metrics{
		AgenciesEnrolled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_agencies_enrolled_total",
			Help: "Total number of agencies enrolled by the authority",
		}),
		SubjectsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_subjects_registered_total",
			Help: "Total number of subject identity records registered",
		}),
		SubjectsBanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attestry_subjects_banned_total",
			Help: "Total number of subjects banned by score collapse",
		}),
		Attestations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attestry_attestations_total",
			Help: "Total number of attestations cast, by outcome",
		}, []string{"outcome"}),
		AttestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestry_attest_duration_seconds",
			Help:    "Duration of attest operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attestry_register_duration_seconds",
			Help:    "Duration of subject registration operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAttestation records a cast attestation by outcome
// (positive/negative).
func (m *Metrics) IncrementAttestation(positive bool) {
	outcome := "negative"
	if positive {
		outcome = "positive"
	}
	m.Attestations.WithLabelValues(outcome).Inc()
}

// ObserveAttest records the duration of an attest operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObserveAttest(start time.Time) {
	m.AttestDuration.Observe(time.Since(start).Seconds())
}

// ObserveRegister records the duration of a registration operation. Call
// with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
