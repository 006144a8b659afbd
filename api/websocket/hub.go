package websocket

import (
	"sync"
	"time"

	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/pkg/config"
)

const (
	defaultBroadcastBuffer = 256
	defaultClientBuffer    = 64
	defaultMaxConnections  = 100
	defaultPongTimeout     = 60 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultMaxMessageSize  = 512
	defaultBufferSize      = 1024
)

// Settings are the per-connection limits applied by the hub.
type Settings struct {
	MaxConnections  int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	ClientBuffer    int
	BroadcastBuffer int
}

func NewSettings(cfg config.WebSocketConfig) Settings {
	s := Settings{
		MaxConnections:  cfg.MaxConnections,
		PingInterval:    cfg.PingInterval,
		PongTimeout:     cfg.PongTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		MaxMessageSize:  cfg.MaxMessageSize,
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		ClientBuffer:    cfg.ClientBuffer,
		BroadcastBuffer: cfg.BroadcastBuffer,
	}
	if s.MaxConnections <= 0 {
		s.MaxConnections = defaultMaxConnections
	}
	if s.PongTimeout <= 0 {
		s.PongTimeout = defaultPongTimeout
	}
	if s.PingInterval <= 0 || s.PingInterval >= s.PongTimeout {
		s.PingInterval = s.PongTimeout * 9 / 10
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = defaultWriteTimeout
	}
	if s.MaxMessageSize <= 0 {
		s.MaxMessageSize = defaultMaxMessageSize
	}
	if s.ReadBufferSize <= 0 {
		s.ReadBufferSize = defaultBufferSize
	}
	if s.WriteBufferSize <= 0 {
		s.WriteBufferSize = defaultBufferSize
	}
	if s.ClientBuffer <= 0 {
		s.ClientBuffer = defaultClientBuffer
	}
	if s.BroadcastBuffer <= 0 {
		s.BroadcastBuffer = defaultBroadcastBuffer
	}
	return s
}

type broadcast struct {
	topic string
	data  []byte
}

// Hub fans messages out to connected clients. Each message carries a
// topic; a client receives it only if subscribed to that topic.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	settings   Settings
}

func NewHub(settings Settings) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcast, settings.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   settings,
	}
}

func (h *Hub) Settings() Settings {
	return h.settings
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Infof("WebSocket client connected (total: %d)", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Infof("WebSocket client disconnected (total: %d)", total)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(msg broadcast) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.Wants(msg.topic) {
			continue
		}
		if !client.trySend(msg.data) {
			delete(h.clients, client)
			client.closeSend()
			logger.Warn("WebSocket client too slow, disconnecting")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		client.closeSend()
	}
}

// Stop makes Run return and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Broadcast queues data for every client subscribed to topic.
func (h *Hub) Broadcast(topic string, data []byte) {
	select {
	case h.broadcast <- broadcast{topic: topic, data: data}:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Full reports whether the hub is at its connection limit.
func (h *Hub) Full() bool {
	return h.ClientCount() >= h.settings.MaxConnections
}

// Register adds client to the hub. After Stop the client is closed
// instead, so its write pump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
