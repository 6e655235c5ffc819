// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Discovery
	DiscoveryQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_queries_total",
			Help: "Search and related-video requests",
		},
		[]string{"kind"},
	)

	DiscoveryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_results",
			Help:    "Number of videos returned per discovery request",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		},
		[]string{"kind"},
	)

	// Social graph
	GraphToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_toggles_total",
			Help: "Subscription and like toggles by direction",
		},
		[]string{"edge", "direction"},
	)

	// Outbound
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Outbound email attempts by result",
		},
		[]string{"result"},
	)

	BlobUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_uploads_total",
			Help: "Blob uploads by backend and result",
		},
		[]string{"backend", "result"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected authenticated websocket clients",
		},
	)
)
