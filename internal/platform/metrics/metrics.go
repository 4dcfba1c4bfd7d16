package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	CasesCreated      prometheus.Counter
	DocumentsAttached prometheus.Counter
	ScansLogged       prometheus.Counter
	FaceMatchOutcome  *prometheus.CounterVec
	FaceMatchDuration prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_cases_created_total",
			Help: "Total number of KYC cases created",
		}),
		DocumentsAttached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_documents_attached_total",
			Help: "Total number of identity documents attached to cases",
		}),
		ScansLogged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kycgate_verification_scans_total",
			Help: "Total number of verification scan records appended",
		}),
		FaceMatchOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kycgate_face_match_decisions_total",
			Help: "Face match decisions by outcome",
		}, []string{"outcome"}),
		FaceMatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kycgate_face_match_duration_ms",
			Help:    "Latency of face match scoring in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}

// ObserveFaceMatch records a face-match decision and its latency.
func (m *Metrics) ObserveFaceMatch(passed bool, durationMs float64) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.FaceMatchOutcome.WithLabelValues(outcome).Inc()
	m.FaceMatchDuration.Observe(durationMs)
}
