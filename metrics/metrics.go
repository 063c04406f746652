// Package metrics exposes Prometheus instrumentation for extractions and the
// browser session.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imdbapi"

// Metrics holds the scraper and browser collectors. It implements
// browser.Recorder and scraper.Observer.
type Metrics struct {
	Extractions        *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	BrowserRestarts    prometheus.Counter
	NavigationFailures prometheus.Counter
	OpenTabs           prometheus.Gauge
}

// New creates and registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "extractions_total",
			Help:      "Extractions by operation and outcome (ok or error code).",
		}, []string{"operation", "outcome"}),
		ExtractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "extraction_duration_seconds",
			Help:      "Duration of extractions, retries included.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"operation"}),
		BrowserRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "browser",
			Name:      "restarts_total",
			Help:      "Browser restarts triggered by failure recovery.",
		}),
		NavigationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "browser",
			Name:      "navigation_failures_total",
			Help:      "Navigations that failed and restarted the browser.",
		}),
		OpenTabs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "browser",
			Name:      "open_tabs",
			Help:      "Number of currently open browser tabs.",
		}),
	}

	reg.MustRegister(
		m.Extractions,
		m.ExtractionDuration,
		m.BrowserRestarts,
		m.NavigationFailures,
		m.OpenTabs,
	)

	return m
}

// ExtractionObserved records one finished extraction.
func (m *Metrics) ExtractionObserved(operation, outcome string, d time.Duration) {
	m.Extractions.WithLabelValues(operation, outcome).Inc()
	m.ExtractionDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) BrowserRestarted() { m.BrowserRestarts.Inc() }
func (m *Metrics) NavigationFailed() { m.NavigationFailures.Inc() }
func (m *Metrics) TabOpened()        { m.OpenTabs.Inc() }
func (m *Metrics) TabClosed()        { m.OpenTabs.Dec() }
