package websocket

import (
	"context"

	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/pkg/models"
)

// EventBridge forwards bus events to websocket clients.
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

// Stop waits for the forwarding goroutine to exit.
func (b *EventBridge) Stop() {
	b.cancel()
	<-b.done
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	defer close(b.done)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	topic := topicFor(event.Type)
	if topic == "" {
		return
	}

	msg := NewMessage(MessageTypeEvent, EventData{
		ID:       event.ID,
		Event:    string(event.Type),
		Topic:    topic,
		Severity: string(event.Severity),
		Source:   string(event.Source),
		Message:  event.Message,
		TraceID:  event.TraceID,
		Details:  event.Data,
	})
	b.hub.Broadcast(topic, msg.JSON())
}

func topicFor(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeSourceFallback, models.EventTypeSourceRestored, models.EventTypeSnapshotFailed:
		return TopicSource
	case models.EventTypeArtifactUnavailable:
		return TopicModel
	case models.EventTypePredictionFailed:
		return TopicPrediction
	default:
		return ""
	}
}
