package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeassist_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeassist_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Context selection
	ContextSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeassist_context_selections_total",
			Help: "Context selections by outcome",
		},
		[]string{"source"}, // "heuristic", "llm" or "empty"
	)

	ContextFilesSelected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codeassist_context_files_selected",
			Help:    "Files added to the context per selection",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	ContextResponseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codeassist_context_response_errors_total",
			Help: "Malformed context selection responses from the model",
		},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeassist_llm_latency_seconds",
			Help:    "Latency of context selection model calls",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	// Store
	StoreRecoveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeassist_store_recoveries_total",
			Help: "Store reopen attempts after a transient failure",
		},
		[]string{"result"}, // "ok" or "failed"
	)

	StoreDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeassist_store_degraded_total",
			Help: "Store operations answered empty because the database was unavailable",
		},
		[]string{"op"},
	)

	UsageEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeassist_usage_events_published_total",
			Help: "Usage events handed to the message broker",
		},
		[]string{"status"},
	)

	// Preview
	PreviewTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codeassist_preview_timeouts_total",
			Help: "Preview loads that exceeded the watchdog window",
		},
	)
)
