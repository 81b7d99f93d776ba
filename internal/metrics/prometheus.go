package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProxyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dei_web_proxy_duration_seconds",
			Help:    "Time spent relaying a request to the backend",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method"},
	)

	ProxyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_proxy_requests_total",
			Help: "Total proxied requests by relayed status code",
		},
		[]string{"method", "status"},
	)

	ProxyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dei_web_proxy_failures_total",
			Help: "Proxied requests answered with the generic internal error",
		},
	)

	PageDataDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dei_web_page_data_duration_seconds",
			Help:    "Time spent assembling page data",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"page"},
	)

	ListingLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_listing_loads_total",
			Help: "Companies listing loads by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	SessionHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_listing_session_hits_total",
			Help: "Fetch-all row sets served from the session store",
		},
		[]string{"store"},
	)

	SessionMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_listing_session_misses_total",
			Help: "Fetch-all row sets that had to be requested from the backend",
		},
		[]string{"store"},
	)

	RecordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_records_skipped_total",
			Help: "Per-item record fetches that failed and were left out of a page",
		},
		[]string{"kind"},
	)

	WebsocketSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dei_web_websocket_sessions",
			Help: "Open live listing sessions",
		},
	)

	WebsocketMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_websocket_messages_total",
			Help: "Messages received on live listing sessions",
		},
		[]string{"type"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dei_web_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	RequestsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dei_web_requests_rejected_total",
			Help: "Requests rejected by input validation",
		},
		[]string{"reason"},
	)
)

func Init() {
	prometheus.MustRegister(ProxyDuration)
	prometheus.MustRegister(ProxyTotal)
	prometheus.MustRegister(ProxyFailures)
	prometheus.MustRegister(PageDataDuration)
	prometheus.MustRegister(ListingLoads)
	prometheus.MustRegister(SessionHits)
	prometheus.MustRegister(SessionMisses)
	prometheus.MustRegister(RecordsSkipped)
	prometheus.MustRegister(WebsocketSessions)
	prometheus.MustRegister(WebsocketMessages)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(RequestsRejected)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
