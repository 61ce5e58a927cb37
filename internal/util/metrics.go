package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_added_total",
		Help: "Total number of products added to the catalog",
	})

	ProductsRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_removed_total",
		Help: "Total number of products removed from the catalog",
	})

	UsersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of registered users",
	})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed at checkout",
	})

	CheckoutFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	CheckoutTotalMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_total_mismatch_total",
		Help: "Checkouts whose submitted total disagreed with the server-computed total",
	})

	CheckoutPartialFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_partial_failure_total",
		Help: "Checkouts where the order was written but clearing the cart failed",
	})

	CatalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog list cache hits and misses",
	}, []string{"list", "result"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Currently connected WebSocket sessions",
	})

	BroadcastDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broadcast_dropped_total",
		Help: "Broadcast events dropped because a subscriber was slow or gone",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
