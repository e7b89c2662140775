package feed

import "github.com/prometheus/client_golang/prometheus"

var (
	candlesForwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trendchart",
		Subsystem: "feed",
		Name:      "candles_forwarded_total",
		Help:      "Closed candles forwarded to consumers.",
	})

	partialBarsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trendchart",
		Subsystem: "feed",
		Name:      "partial_bars_dropped_total",
		Help:      "In-progress kline updates discarded.",
	})

	malformedMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trendchart",
		Subsystem: "feed",
		Name:      "malformed_messages_total",
		Help:      "Stream messages that could not be parsed.",
	})

	connectionErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trendchart",
		Subsystem: "feed",
		Name:      "connection_errors_total",
		Help:      "Dial failures and stream read errors.",
	})

	reconnectsScheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trendchart",
		Subsystem: "feed",
		Name:      "reconnects_scheduled_total",
		Help:      "Reconnect timers scheduled after a close.",
	})
)

func init() {
	prometheus.MustRegister(
		candlesForwarded,
		partialBarsDropped,
		malformedMessages,
		connectionErrors,
		reconnectsScheduled,
	)
}
