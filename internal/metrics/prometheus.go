package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/car-analytics/internal/logger"
)

const namespace = "caranalytics"

type Metrics struct {
	registry *prometheus.Registry

	datasetResolves   *prometheus.CounterVec
	datasetRecords    *prometheus.GaugeVec
	sourceFallbacks   prometheus.Counter
	snapshotFailures  prometheus.Counter
	breakerState      *prometheus.GaugeVec
	artifactsReady    prometheus.Gauge
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New builds an independent set of collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		datasetResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_resolves_total",
			Help:      "Datasets resolved, by backing source.",
		}, []string{"source"}),
		datasetRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Record count of the last dataset resolved from each source.",
		}, []string{"source"}),
		sourceFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fallbacks_total",
			Help:      "Resolves that fell back from the live store to the snapshot.",
		}),
		snapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Failed snapshot reads.",
		}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "0=closed, 1=open, 2=half-open.",
		}, []string{"name"}),
		artifactsReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_artifacts_available",
			Help:      "1 when the classifier and codecs are loaded.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests, by outcome.",
		}, []string{"outcome"}),
		predictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent encoding, classifying and decoding one request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.datasetResolves,
		m.datasetRecords,
		m.sourceFallbacks,
		m.snapshotFailures,
		m.breakerState,
		m.artifactsReady,
		m.predictions,
		m.predictionLatency,
	)
	return m
}

func (m *Metrics) ObserveResolve(source string, records int) {
	m.datasetResolves.WithLabelValues(source).Inc()
	m.datasetRecords.WithLabelValues(source).Set(float64(records))
}

func (m *Metrics) IncFallback() {
	m.sourceFallbacks.Inc()
}

func (m *Metrics) IncSnapshotFailure() {
	m.snapshotFailures.Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.breakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) SetArtifactsAvailable(available bool) {
	if available {
		m.artifactsReady.Set(1)
		return
	}
	m.artifactsReady.Set(0)
}

func (m *Metrics) ObservePrediction(outcome string, d time.Duration) {
	m.predictions.WithLabelValues(outcome).Inc()
	m.predictionLatency.Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on its own port. The returned server can be
// shut down by the caller.
func StartServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Infof("Prometheus metrics server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
	return srv
}
