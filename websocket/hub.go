// websocket/hub.go
package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeDecodeProgress   MessageType = "DECODE_PROGRESS"
	MessageTypeValidateProgress MessageType = "VALIDATE_PROGRESS"
	MessageTypeUploadProgress   MessageType = "UPLOAD_PROGRESS"
	MessageTypeStageComplete    MessageType = "STAGE_COMPLETE"
	MessageTypeError            MessageType = "ERROR"
)

type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan WebSocketMessage
	Sessions map[string]bool
	mu       sync.RWMutex
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToAll(message)
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message WebSocketMessage) {
	h.broadcast <- message
}

// BroadcastToSession sends a message to clients watching a specific upload session
func (h *Hub) BroadcastToSession(sessionID string, message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	message.SessionID = sessionID
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	for client := range h.clients {
		client.mu.RLock()
		_, isSubscribed := client.Sessions[sessionID]
		client.mu.RUnlock()

		if isSubscribed {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// broadcastToAll sends a message to all connected clients
func (h *Hub) broadcastToAll(message WebSocketMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscribeToSession adds an upload session to the client's subscriptions
func (c *Client) SubscribeToSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Sessions == nil {
		c.Sessions = make(map[string]bool)
	}
	c.Sessions[sessionID] = true
}

// UnsubscribeFromSession removes an upload session from the client's subscriptions
func (c *Client) UnsubscribeFromSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Sessions, sessionID)
}
