package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recordMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardify_record_mutations_total",
			Help: "Record store mutations by collection and operation",
		},
		[]string{"collection", "op"},
	)
	missedMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardify_missed_mutations_total",
			Help: "Mutations skipped because no record matched the id",
		},
		[]string{"collection", "op"},
	)
	scanOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardify_scan_outcomes_total",
			Help: "Decoded ticket QR frames by verdict",
		},
		[]string{"outcome"},
	)
	activeScanSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardify_scan_sessions_active",
			Help: "Open ticket scan sessions",
		},
	)
)

// RegisterMetrics registers the domain collectors. Call it once from main.go.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(recordMutations, missedMutations, scanOutcomes, activeScanSessions)
}
