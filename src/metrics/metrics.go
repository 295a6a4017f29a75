package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TransitionsTotal counts lifecycle operations by event type and outcome.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_lifecycle_transitions_total",
			Help: "Asset lifecycle transitions by event type and outcome",
		},
		[]string{"event", "outcome"},
	)

	PublicCardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_public_card_cache_total",
			Help: "Public asset card cache lookups by result",
		},
		[]string{"result"},
	)

	WarrantyExpiring = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_warranty_expiring_assets",
			Help: "Non-retired assets whose warranty ends within the configured horizon",
		},
	)

	AssetsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_assets",
			Help: "Non-retired assets by status",
		},
		[]string{"status"},
	)
)
