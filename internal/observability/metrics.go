package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	attachmentStoredTotal   *prometheus.CounterVec
	attachmentRejectedTotal *prometheus.CounterVec
	attachmentLatency       prometheus.Histogram
	complaintEventsTotal    *prometheus.CounterVec
	dashboardCacheTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exposed on /metrics.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_requests_total",
			Help: "API requests served, by area (public, user, admin).",
		}, []string{"area", "method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaints_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"area", "method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_http_errors_total",
			Help: "Error responses returned by the API.",
		}, []string{"area", "method", "route", "status"})

		attachmentStoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attachments_stored_total",
			Help: "Attachments accepted and written to storage, by detected MIME type.",
		}, []string{"mime"})

		attachmentRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attachments_rejected_total",
			Help: "Attachments refused, by reason.",
		}, []string{"reason"})

		attachmentLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attachment_store_seconds",
			Help:    "Time spent validating and storing a single attachment.",
			Buckets: prometheus.DefBuckets,
		})

		complaintEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_events_total",
			Help: "Complaint lifecycle events, by type.",
		}, []string{"type"})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_cache_total",
			Help: "Dashboard cache lookups, by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			attachmentStoredTotal,
			attachmentRejectedTotal,
			attachmentLatency,
			complaintEventsTotal,
			dashboardCacheTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AttachmentsStored counts stored attachments.
func AttachmentsStored() *prometheus.CounterVec {
	RegisterMetrics()
	return attachmentStoredTotal
}

// AttachmentsRejected counts refused attachments.
func AttachmentsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return attachmentRejectedTotal
}

// AttachmentLatency observes per-file store time.
func AttachmentLatency() prometheus.Histogram {
	RegisterMetrics()
	return attachmentLatency
}

// ComplaintEvents counts lifecycle events.
func ComplaintEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return complaintEventsTotal
}

// DashboardCache counts dashboard cache hits and misses.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}
