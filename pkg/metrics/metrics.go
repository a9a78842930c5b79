package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	ordersPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders placed, by sales channel.",
	}, []string{"channel"})

	pointsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "loyalty",
		Name:      "points_awarded_total",
		Help:      "Loyalty points awarded for paid orders.",
	})

	cartsAbandoned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "omnipos_commerce",
		Subsystem: "carts",
		Name:      "abandoned_total",
		Help:      "Carts marked abandoned by the sweeper.",
	})
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersPlaced,
		pointsAwarded,
		cartsAbandoned,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies keyed by the route template,
// so /products/:slug is one series rather than one per product.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		c.Next()
		httpInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordOrderPlaced(channel string) { ordersPlaced.WithLabelValues(channel).Inc() }

func RecordPointsAwarded(points int) {
	if points > 0 {
		pointsAwarded.Add(float64(points))
	}
}

func RecordCartsAbandoned(n int) {
	if n > 0 {
		cartsAbandoned.Add(float64(n))
	}
}
