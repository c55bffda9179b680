package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created at checkout",
	})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled",
	})

	// reason: cart_empty / product_not_found / insufficient_stock / error
	CheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_failures_total",
			Help: "Checkout attempts that did not create an order",
		},
		[]string{"reason"},
	)

	// result: deleted / failed / dropped
	CartCleanup = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_cleanup_total",
			Help: "Orphan cart line cleanup outcomes",
		},
		[]string{"result"},
	)

	// result: hit / miss
	StatsCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_cache_total",
			Help: "Dashboard stats cache lookups",
		},
		[]string{"result"},
	)
)
