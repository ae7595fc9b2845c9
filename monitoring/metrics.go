package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketPurchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_purchases_total",
			Help: "Ticket purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	purchaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticket_purchase_duration_seconds",
			Help:    "Time spent in the purchase workflow",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	eventsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_created_total",
			Help: "Events created by organizers",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Track purchase outcome and latency
func (m *Monitor) ObservePurchase(outcome string, elapsed time.Duration) {
	ticketPurchases.WithLabelValues(outcome).Inc()
	purchaseDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Monitor) ObserveEventCreated() {
	eventsCreated.Inc()
}

// HTTPMetrics records every request under its route template, so ids in
// paths do not explode label cardinality.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
