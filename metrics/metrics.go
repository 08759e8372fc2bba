package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ratewatch"

// Outcome labels for call counters
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics contains the polling metrics
type Metrics struct {
	// Endpoint and scrape calls, by outcome
	calls *prometheus.CounterVec

	// Recorded block events, by reason
	blocks *prometheus.CounterVec

	// Number of records in the latest snapshot
	scrapedRates prometheus.Gauge

	// Duration of a full sweep (endpoints + scrape)
	sweepDuration prometheus.Histogram
}

// New creates the polling metrics and registers them with reg.
// A nil registerer yields unregistered metrics
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of upstream calls, by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		blocks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_total",
				Help:      "Total number of recorded block events, by endpoint and reason",
			},
			[]string{"endpoint", "reason"},
		),
		scrapedRates: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scraped_rates",
				Help:      "Number of rate records in the latest snapshot",
			},
		),
		sweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of a full polling sweep",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
		),
	}
}

// ObserveCall counts a single upstream call
func (m *Metrics) ObserveCall(endpoint, outcome string) {
	m.calls.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveBlock counts a single block event
func (m *Metrics) ObserveBlock(endpoint, reason string) {
	m.blocks.WithLabelValues(endpoint, reason).Inc()
}

// SetScrapedRates sets the size of the latest snapshot
func (m *Metrics) SetScrapedRates(n int) {
	m.scrapedRates.Set(float64(n))
}

// ObserveSweep records the duration of a sweep
func (m *Metrics) ObserveSweep(d time.Duration) {
	m.sweepDuration.Observe(d.Seconds())
}
