package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageTypeEvent        MessageType = "event"
	MessageTypeSubscription MessageType = "subscription_update"
)

// Topics a client can subscribe to.
const (
	TopicSource     = "source"
	TopicModel      = "model"
	TopicPrediction = "prediction"
)

func IsTopic(t string) bool {
	switch t {
	case TopicSource, TopicModel, TopicPrediction:
		return true
	}
	return false
}

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type SubscriptionData struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// EventData is the payload pushed for a bus event.
type EventData struct {
	ID       string      `json:"id"`
	Event    string      `json:"event"`
	Topic    string      `json:"topic"`
	Severity string      `json:"severity,omitempty"`
	Source   string      `json:"source,omitempty"`
	Message  string      `json:"message,omitempty"`
	TraceID  string      `json:"trace_id,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}
