package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// submission outcomes
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeInvalid   = "invalid"
	outcomeMalformed = "malformed"
	outcomeError     = "error"
)

type submissionMetrics struct {
	submissions *prometheus.CounterVec
}

func newSubmissionMetrics(reg prometheus.Registerer) *submissionMetrics {
	m := &submissionMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "melba_submissions_total",
			Help: "Public form submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.submissions)
	return m
}

func (m *submissionMetrics) inc(kind, outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(kind, outcome).Inc()
}
