package api

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	domain "github.com/example/focusflow/domain/user"
	"github.com/example/focusflow/modules/presence"
	"github.com/example/focusflow/modules/status"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// sendBufferSize bounds the per-connection outbound queue. Frames past
// the bound are dropped rather than stalling a broadcast.
const sendBufferSize = 64

// wsClient wraps a websocket connection with a buffered outbound queue.
// All writes go through writePump so only one goroutine touches the
// connection. wsClient satisfies presence.Sender.
//
// mu guards send against close: a broadcast may still hold this client
// in its attachment snapshot after the connection's disconnect cleanup
// has run, so Send must observe the closed flag before queueing.
type wsClient struct {
	connID string
	claims *domain.Claims
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newWSClient(connID string, claims *domain.Claims, conn *websocket.Conn) *wsClient {
	return &wsClient{
		connID: connID,
		claims: claims,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Send queues an event frame for delivery. It never blocks: when the
// queue is full the frame is dropped and the slow connection keeps its
// backlog instead of holding up the room.
func (c *wsClient) Send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[api] Failed to encode %s payload: %v", event, err)
		return
	}

	frame, err := json.Marshal(WSMessage{Type: event, Payload: data})
	if err != nil {
		log.Printf("[api] Failed to encode %s frame: %v", event, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- frame:
	default:
		log.Printf("[api] Dropping %s frame for slow client %s", event, c.connID)
	}
}

// writePump drains the outbound queue onto the connection. It returns
// when the queue is closed or a write fails.
func (c *wsClient) writePump() {
	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

// close stops the write pump and marks the client dead for any broadcast
// still holding a reference to it. Safe to call more than once.
func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// handleWebSocket handles WebSocket connections at /ws. Authentication
// happens during the upgrade; by the time this runs the claims are
// already in Locals.
func (m *Module) handleWebSocket(conn *websocket.Conn) {
	claims, ok := conn.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		_ = conn.Close()
		return
	}

	connID := uuid.New().String()
	client := newWSClient(connID, claims, conn)

	go client.writePump()
	defer func() {
		m.hub.Disconnect(connID)
		client.close()
		log.Printf("[api] WebSocket client disconnected: %s (%s)", connID, claims.Username)
	}()

	log.Printf("[api] WebSocket client connected: %s (%s)", connID, claims.Username)

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", connID)
			} else {
				log.Printf("[api] Read error from %s: %v", connID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			// Malformed frames are dropped without a reply.
			continue
		}

		switch msg.Type {
		case WSTypeJoin:
			m.handleWSJoin(client, msg.Payload)
		case WSTypeLeave:
			m.handleWSLeave(client, msg.Payload)
		case WSTypeUpdateStatus:
			m.handleWSUpdateStatus(client, msg.Payload)
		case WSTypeRoomChat:
			m.handleWSRoomChat(client, msg.Payload)
		default:
			log.Printf("[api] Unknown frame type %q from %s", msg.Type, connID)
		}
	}
}

// handleWSJoin attaches the connection to a room's live group. Frames
// for rooms the user is not a member of are dropped silently; the REST
// join endpoint is where admission is negotiated.
func (m *Module) handleWSJoin(client *wsClient, payload json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}

	att := &presence.Attachment{
		ConnID:   client.connID,
		UserID:   client.claims.UserID,
		Username: client.claims.Username,
		Sender:   client,
	}
	if err := m.hub.Attach(context.Background(), att, p.RoomID); err != nil {
		log.Printf("[api] Join to %s refused for %s: %v", p.RoomID, client.claims.Username, err)
	}
}

func (m *Module) handleWSLeave(client *wsClient, payload json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}

	m.hub.Detach(client.connID, p.RoomID)
}

// handleWSUpdateStatus persists a status change and fans it out to the
// rest of the room. Failed updates are dropped without a reply.
func (m *Module) handleWSUpdateStatus(client *wsClient, payload json.RawMessage) {
	var p StatusPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}

	update := status.Update{
		Status:     p.Status,
		GaugeLevel: p.GaugeLevel,
	}
	if err := m.status.UpdateStatus(context.Background(), client.connID, client.claims.UserID, p.RoomID, update); err != nil {
		log.Printf("[api] Status update dropped for %s: %v", client.claims.Username, err)
	}
}

// handleWSRoomChat persists a chat message and fans it out, sender
// included. Invalid messages are dropped without a reply.
func (m *Module) handleWSRoomChat(client *wsClient, payload json.RawMessage) {
	var p ChatPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.RoomID == "" {
		return
	}

	if _, err := m.chat.Relay().PostMessage(
		context.Background(),
		client.claims.UserID,
		client.claims.Username,
		p.RoomID,
		p.Msg,
	); err != nil {
		log.Printf("[api] Chat message dropped for %s: %v", client.claims.Username, err)
	}
}
