package events

import (
	"github.com/OldStager01/car-analytics/pkg/models"
)

// Publisher turns pipeline occurrences into bus events. A nil *Publisher
// is valid and publishes nothing.
type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	if p == nil {
		return nil
	}
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) SourceFallback(reason error) {
	event := models.NewEvent(models.EventTypeSourceFallback, "Live store unavailable, serving snapshot").
		WithSeverity(models.SeverityWarning).
		WithSource(models.SourceSnapshot)
	if reason != nil {
		event.WithData(map[string]string{"reason": reason.Error()})
	}
	p.publish(event)
}

func (p *Publisher) SourceRestored() {
	event := models.NewEvent(models.EventTypeSourceRestored, "Live store reachable again").
		WithSource(models.SourceLive)
	p.publish(event)
}

func (p *Publisher) SnapshotFailed(err error) {
	event := models.NewEvent(models.EventTypeSnapshotFailed, "Snapshot could not be read").
		WithSeverity(models.SeverityCritical).
		WithSource(models.SourceSnapshot).
		WithData(map[string]string{"error": err.Error()})
	p.publish(event)
}

func (p *Publisher) ArtifactUnavailable(reason error) {
	event := models.NewEvent(models.EventTypeArtifactUnavailable, "Prediction disabled, model artifacts unavailable").
		WithSeverity(models.SeverityWarning)
	if reason != nil {
		event.WithData(map[string]string{"reason": reason.Error()})
	}
	p.publish(event)
}

func (p *Publisher) PredictionFailed(kind string, err error) {
	severity := models.SeverityInfo
	if kind == "invalid_code" {
		severity = models.SeverityCritical
	}
	event := models.NewEvent(models.EventTypePredictionFailed, "Prediction failed").
		WithSeverity(severity).
		WithData(map[string]string{"kind": kind, "error": err.Error()})
	p.publish(event)
}
