package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/pkg/models"
)

func TestEventBus_Routing(t *testing.T) {
	bus := NewEventBus(4)
	defer bus.Close()

	fallbacks := bus.Subscribe(models.EventTypeSourceFallback)
	all := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypeSourceFallback, "down"))
	bus.Publish(models.NewEvent(models.EventTypeSourceRestored, "up"))

	assert.Len(t, fallbacks, 1)
	assert.Len(t, all, 2)
}

func TestEventBus_FullChannelDrops(t *testing.T) {
	bus := NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeSourceFallback)
	for i := 0; i < 3; i++ {
		bus.Publish(models.NewEvent(models.EventTypeSourceFallback, "down"))
	}
	assert.Len(t, ch, 1)
}

func TestEventBus_CloseClosesChannels(t *testing.T) {
	bus := NewEventBus(1)
	ch := bus.Subscribe(models.EventTypeSnapshotFailed)
	all := bus.SubscribeAll()

	bus.Close()
	bus.Close()
	bus.Publish(models.NewEvent(models.EventTypeSnapshotFailed, "ignored"))

	_, ok := <-ch
	assert.False(t, ok)
	_, ok = <-all
	assert.False(t, ok)
}

func TestPublisher(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()
	all := bus.SubscribeAll()

	p := NewPublisher(bus).WithTraceID("req-7")
	p.SourceFallback(errors.New("connection refused"))
	p.SnapshotFailed(errors.New("missing file"))
	p.PredictionFailed("unknown_category", errors.New("DE"))
	p.PredictionFailed("invalid_code", errors.New("9"))

	require.Len(t, all, 4)

	e := <-all
	assert.Equal(t, models.EventTypeSourceFallback, e.Type)
	assert.Equal(t, models.SeverityWarning, e.Severity)
	assert.Equal(t, "req-7", e.TraceID)
	assert.Equal(t, map[string]string{"reason": "connection refused"}, e.Data)

	e = <-all
	assert.Equal(t, models.SeverityCritical, e.Severity)

	e = <-all
	assert.Equal(t, models.SeverityInfo, e.Severity)

	e = <-all
	assert.Equal(t, models.SeverityCritical, e.Severity)
}

func TestPublisher_Nil(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.WithTraceID("x").SourceRestored()
		p.ArtifactUnavailable(nil)
	})
}

func TestEventLogger_LogToJSON(t *testing.T) {
	l := NewEventLogger(nil)
	out := l.LogToJSON(models.NewEvent(models.EventTypeSourceRestored, "up").WithSource(models.SourceLive))
	assert.Contains(t, out, `"type":"source_restored"`)
	assert.Contains(t, out, `"source":"live"`)
}

func TestEventLogger_StopsOnClose(t *testing.T) {
	bus := NewEventBus(4)
	l := NewEventLogger(bus.SubscribeAll())
	l.Start()

	bus.Publish(models.NewEvent(models.EventTypeSourceFallback, "down"))
	bus.Close()
	l.Stop()
}
