package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	DIDsCreated       prometheus.Counter
	CredentialsIssued prometheus.Counter
	IssueFailures     *prometheus.CounterVec
	AnchorAppends     *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	RequestLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		DIDsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_dids_created_total",
			Help: "Total number of identities created on the ledger",
		}),
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "credanchor_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		IssueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credanchor_issue_failures_total",
			Help: "Issuance failures by error code",
		}, []string{"code"}),
		AnchorAppends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credanchor_anchor_appends_total",
			Help: "Anchor log appends by receipt status",
		}, []string{"status"}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "credanchor_verifications_total",
			Help: "Credential verifications by outcome",
		}, []string{"outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credanchor_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}
