package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the tickers counter
const (
	OutcomeOK        = "ok"
	OutcomeNoData    = "no_data"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Metrics holds the Prometheus collectors updated by Run
type Metrics struct {
	runs         prometheus.Counter
	tickers      *prometheus.CounterVec
	tickerTime   prometheus.Histogram
	lastDuration prometheus.Gauge
	lastRun      prometheus.Gauge
}

// NewMetrics registers the scanner collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "techtrack",
			Subsystem: "scanner",
			Name:      "runs_total",
			Help:      "Batch runs started.",
		}),
		tickers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "techtrack",
			Subsystem: "scanner",
			Name:      "tickers_total",
			Help:      "Tickers processed, by outcome.",
		}, []string{"outcome"}),
		tickerTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "techtrack",
			Subsystem: "scanner",
			Name:      "ticker_duration_seconds",
			Help:      "Time to fetch and analyse one ticker.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		lastDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "techtrack",
			Subsystem: "scanner",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent run.",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "techtrack",
			Subsystem: "scanner",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished.",
		}),
	}
}
