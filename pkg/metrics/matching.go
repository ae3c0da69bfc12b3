package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the matched-results HTTP handler
	MatchRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_results_latency_seconds",
		Help:    "Latency of the matched-results handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total matched-results requests served
	MatchRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matching_results_requests_total",
		Help: "Total number of matched-results requests",
	})

	// Admission decisions per ledger operation and outcome
	AdmissionDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlement_admission_decisions_total",
		Help: "Ledger admission decisions by operation and outcome",
	}, []string{"operation", "outcome"})

	// Unlock code attempts, labelled only granted/denied
	UnlockAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "entitlement_unlock_attempts_total",
		Help: "Feature unlock attempts by outcome",
	}, []string{"outcome"})
)

func Init() {
	prometheus.MustRegister(
		MatchRequestLatency,
		MatchRequests,
		AdmissionDecisions,
		UnlockAttempts,
	)
}
