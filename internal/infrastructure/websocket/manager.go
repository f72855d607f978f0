package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket connection subscribed to one bottle's chat.
type Client struct {
	UserID   string
	BottleID string
	Conn     *websocket.Conn
	Send     chan []byte
	// OnClose, when set, runs once after the read loop ends so the owner
	// can tear down whatever feeds Send.
	OnClose func()
}

// Manager manages all active WebSocket connections, grouped by bottle.
type Manager struct {
	rooms      map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.rooms[client.BottleID] == nil {
					m.rooms[client.BottleID] = make(map[*Client]bool)
				}
				m.rooms[client.BottleID][client] = true
				m.mutex.Unlock()
				log.Printf("Client registered: %s on bottle %s", client.UserID, client.BottleID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if room, ok := m.rooms[client.BottleID]; ok {
					if _, ok := room[client]; ok {
						delete(room, client)
						close(client.Send)
						if len(room) == 0 {
							delete(m.rooms, client.BottleID)
						}
					}
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s from bottle %s", client.UserID, client.BottleID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToRoom fans a message out to every subscriber of a bottle's chat.
// An empty excludeUserID sends to everyone.
func (m *Manager) SendToRoom(bottleID string, message []byte, excludeUserID string) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.rooms[bottleID] {
		if excludeUserID != "" && client.UserID == excludeUserID {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Slow consumer; drop the event rather than block the fan-out.
		}
	}
}

// SendToClient delivers a message to one subscriber if it is still
// registered. Returns false once the client has been unregistered so
// callers can stop their event bridge.
func (m *Manager) SendToClient(client *Client, message []byte) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, ok := m.rooms[client.BottleID]
	if !ok || !room[client] {
		return false
	}
	select {
	case client.Send <- message:
	default:
		// Slow consumer; drop the event rather than block.
	}
	return true
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
		if c.OnClose != nil {
			c.OnClose()
		}
	}()

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		// The chat stream is one-way; inbound frames are ignored.
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
