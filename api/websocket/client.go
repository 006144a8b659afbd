package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/car-analytics/internal/logger"
)

// Client is one websocket connection. A client with no explicit
// subscriptions receives every topic.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.RWMutex
	topics map[string]bool

	sendMu sync.Mutex
	closed bool
}

type IncomingMessage struct {
	Type   string   `json:"type"`
	Topics []string `json:"topics,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, topics []string) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.settings.ClientBuffer),
		topics: make(map[string]bool),
	}
	c.subscribe(topics)
	return c
}

// trySend queues data without blocking. It reports false when the buffer
// is full or the client is already closed.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel once; the write pump exits when it
// drains.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Wants reports whether the client should receive messages on topic.
func (c *Client) Wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.topics) == 0 || c.topics[topic]
}

func (c *Client) subscribe(topics []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []string
	for _, t := range topics {
		if IsTopic(t) && !c.topics[t] {
			c.topics[t] = true
			added = append(added, t)
		}
	}
	return added
}

func (c *Client) unsubscribe(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(topics) == 0 {
		c.topics = make(map[string]bool)
		return
	}
	for _, t := range topics {
		delete(c.topics, t)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	s := c.hub.settings
	c.conn.SetReadLimit(s.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(s.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(s.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	s := c.hub.settings
	ticker := time.NewTicker(s.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce queued messages into this frame, newline separated.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		added := c.subscribe(msg.Topics)
		logger.WithField("topics", added).Debug("Client subscribed")
		c.sendConfirmation("subscribed", added)
	case "unsubscribe":
		c.unsubscribe(msg.Topics)
		logger.WithField("topics", msg.Topics).Debug("Client unsubscribed")
		c.sendConfirmation("unsubscribed", msg.Topics)
	}
}

func (c *Client) sendConfirmation(action string, topics []string) {
	if topics == nil {
		topics = []string{}
	}
	msg := NewMessage(MessageTypeSubscription, SubscriptionData{Action: action, Topics: topics})
	if !c.trySend(msg.JSON()) {
		logger.Warn("Client send channel full or closed, dropping confirmation")
	}
}

// ServeWebSocket upgrades the request and attaches the connection to hub.
// The optional topics query parameter is a comma separated list.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		if hub.Full() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		var topics []string
		if q := c.Query("topics"); q != "" {
			topics = strings.Split(q, ",")
		}

		client := NewClient(hub, conn, topics)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
