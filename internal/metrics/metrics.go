// Package metrics exposes the prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProviderCalls counts storage calls answered per provider.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vetlab_provider_calls_total",
		Help: "Storage operations answered, by provider and method",
	}, []string{"provider", "method"})

	// DelegateFallbacks counts delegate failures that fell through to the next provider.
	DelegateFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vetlab_delegate_fallbacks_total",
		Help: "Delegate calls that failed or returned nothing",
	}, []string{"provider", "method", "reason"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vetlab_cache_lookups_total",
		Help: "List cache lookups by cache and outcome",
	}, []string{"cache", "outcome"})

	ActiveAlerts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vetlab_inventory_alerts",
		Help: "Inventory alerts currently active",
	})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vetlab_ws_clients",
		Help: "Connected websocket clients",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vetlab_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
