package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total number of HTTP requests processed by the pipeline service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	jobsPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_jobs_published_total",
			Help: "Total number of delivery jobs published to the queue.",
		},
	)
	publishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	batchesProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_batches_processed_total",
			Help: "Total number of successfully processed delivery batches.",
		},
	)
	batchJobsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_batch_jobs_processed_total",
			Help: "Total number of jobs in successfully processed batches.",
		},
	)
	batchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_batch_failures_total",
			Help: "Total number of delivery batches that failed and were requeued.",
		},
	)
	duplicateDeliveriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_duplicates_total",
			Help: "Total number of redelivered jobs suppressed by the idempotent write.",
		},
	)
	fallbackDeliveriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_delivery_fallback_total",
			Help: "Total number of messages written directly because the queue was unavailable.",
		},
	)
	unreadCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_unread_cache_requests_total",
			Help: "Unread-count cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		jobsPublishedTotal,
		publishErrorsTotal,
		batchesProcessedTotal,
		batchJobsProcessedTotal,
		batchFailuresTotal,
		duplicateDeliveriesTotal,
		fallbackDeliveriesTotal,
		unreadCacheHitsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncJobPublished() {
	jobsPublishedTotal.Inc()
}

func IncPublishError() {
	publishErrorsTotal.Inc()
}

func IncBatchProcessed(jobs int) {
	batchesProcessedTotal.Inc()
	batchJobsProcessedTotal.Add(float64(jobs))
}

func IncBatchFailure() {
	batchFailuresTotal.Inc()
}

func IncDuplicateDelivery() {
	duplicateDeliveriesTotal.Inc()
}

func IncFallbackDelivery() {
	fallbackDeliveriesTotal.Inc()
}

func IncUnreadCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	unreadCacheHitsTotal.WithLabelValues(outcome).Inc()
}
