package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeSourceFallback      EventType = "source_fallback"
	EventTypeSourceRestored      EventType = "source_restored"
	EventTypeSnapshotFailed      EventType = "snapshot_failed"
	EventTypeArtifactUnavailable EventType = "artifact_unavailable"
	EventTypePredictionFailed    EventType = "prediction_failed"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Source    SourceKind    `json:"source,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, message string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithSource(source SourceKind) *Event {
	e.Source = source
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}

// AllEventTypes lists every event type the bus routes.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeSourceFallback,
		EventTypeSourceRestored,
		EventTypeSnapshotFailed,
		EventTypeArtifactUnavailable,
		EventTypePredictionFailed,
	}
}
