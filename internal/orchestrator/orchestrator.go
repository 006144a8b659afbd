// Package orchestrator owns the long-lived components shared by every
// entry point: the event bus, the data source resolver, the model
// artifacts and the prediction service.
package orchestrator

import (
	"sync"

	"github.com/OldStager01/car-analytics/internal/analytics"
	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/internal/events"
	"github.com/OldStager01/car-analytics/internal/inference"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/internal/source"
	"github.com/OldStager01/car-analytics/pkg/config"
)

type Orchestrator struct {
	config      *config.Config
	metrics     *metrics.Metrics
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	publisher   *events.Publisher
	resolver    *source.Resolver
	loader      *artifact.Loader
	engine      *analytics.Engine

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	predictor *inference.Service
	modelErr  error
}

type Option func(*options)

type options struct {
	connector source.Connector
	snapshot  source.SnapshotReader
	metrics   *metrics.Metrics
}

// WithConnector replaces the connector derived from the database config.
func WithConnector(c source.Connector) Option {
	return func(o *options) { o.connector = c }
}

func WithSnapshot(s source.SnapshotReader) Option {
	return func(o *options) { o.snapshot = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func New(cfg *config.Config, opts ...Option) *Orchestrator {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.metrics == nil {
		o.metrics = metrics.Get()
	}
	if o.connector == nil {
		if cfg.Database.Enabled {
			o.connector = source.NewPostgresConnector(cfg.Database.ToDBConfig(), cfg.Database.QueryTimeout)
		} else {
			o.connector = source.DisabledConnector{}
		}
	}
	if o.snapshot == nil {
		o.snapshot = source.CSVSnapshot{Path: cfg.Snapshot.Path}
	}

	eventBus := events.NewEventBus(cfg.Events.BufferSize)
	eventLogger := events.NewEventLogger(eventBus.SubscribeAll())
	publisher := events.NewPublisher(eventBus)

	return &Orchestrator{
		config:      cfg,
		metrics:     o.metrics,
		eventBus:    eventBus,
		eventLogger: eventLogger,
		publisher:   publisher,
		resolver: source.NewResolver(o.connector, o.snapshot, source.Config{
			RetryAfter: cfg.Source.RetryAfter,
			Publisher:  publisher,
			Metrics:    o.metrics,
		}),
		loader: artifact.NewLoader(artifact.Config{
			Dir:       cfg.Artifacts.Dir,
			ModelFile: cfg.Artifacts.ModelFile,
			CodecFile: cfg.Artifacts.CodecFile,
		}),
		engine: analytics.New(analytics.Config{}),
	}
}

// Start loads the model artifacts and begins logging events. Missing
// artifacts disable prediction; they never fail Start.
func (o *Orchestrator) Start() {
	o.startOnce.Do(func() {
		logger.Info("Orchestrator starting")
		o.eventLogger.Start()
		o.started = true

		arts := o.loader.Load()
		o.metrics.SetArtifactsAvailable(arts.Available())

		svc, err := inference.New(arts, inference.Config{
			Publisher: o.publisher,
			Metrics:   o.metrics,
		})
		if err != nil {
			o.modelErr = err
			o.publisher.ArtifactUnavailable(err)
			return
		}
		o.predictor = svc
	})
}

func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		logger.Info("Orchestrator stopping")

		if err := o.resolver.Close(); err != nil {
			logger.Errorf("Failed to close live store: %v", err)
		}

		if o.started {
			o.eventLogger.Stop()
		}
		o.eventBus.Close()

		logger.Info("Orchestrator stopped")
	})
}

func (o *Orchestrator) Resolver() *source.Resolver {
	return o.resolver
}

func (o *Orchestrator) Engine() *analytics.Engine {
	return o.engine
}

func (o *Orchestrator) Events() *events.EventBus {
	return o.eventBus
}

func (o *Orchestrator) Metrics() *metrics.Metrics {
	return o.metrics
}

// Predictor returns the prediction service, or the reason prediction is
// disabled. Call Start first.
func (o *Orchestrator) Predictor() (*inference.Service, error) {
	if o.predictor == nil && o.modelErr == nil {
		return nil, artifact.ErrArtifactUnavailable
	}
	return o.predictor, o.modelErr
}
