package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// Purchases counts committed purchases by resulting action (updated or removed).
	Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_total",
		Help: "The total number of committed purchases by resulting action",
	}, []string{"action"})

	// PurchasesRejected counts purchases that were refused, by reason.
	PurchasesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_rejected_total",
		Help: "The total number of rejected purchases by reason",
	}, []string{"reason"})

	// LiveChannels is the number of currently registered dashboard channels.
	LiveChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "live_channels",
		Help: "The number of registered live dashboard channels",
	})

	// BroadcastFailures counts deliveries to live channels that failed.
	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "live_broadcast_failures_total",
		Help: "The total number of failed deliveries to live channels",
	})

	// ExchangeRateFallbacks counts rate lookups answered without a fresh quote.
	ExchangeRateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exchange_rate_fallbacks_total",
		Help: "The total number of exchange rate lookups served from the fallback",
	})

	// CacheRequests counts response cache lookups by result (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "The total number of response cache lookups by result",
	}, []string{"result"})
)
