// Package presence implements the per-room broadcast hub: the runtime
// mapping from rooms to live attachments, and the fan-out of events to
// exactly the connections currently watching a room.
package presence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Live channel event names pushed to clients.
const (
	EventRoomMessage    = "room_message"
	EventStatusUpdated  = "status_updated"
	EventNewChatMessage = "new_chat_message"
)

// ErrNotAMember is returned when a connection tries to attach to a room its
// user does not belong to.
var ErrNotAMember = errors.New("user is not a member of the room")

// Sender delivers one event to a single connection. Implementations must
// not block: delivery is best-effort and a slow peer is the peer's problem,
// never the broadcaster's.
type Sender interface {
	Send(event string, payload any)
}

// MembershipChecker answers durable membership questions. Implemented by
// the rooms module; kept as an interface so the hub is testable without
// storage.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, roomID string) (bool, error)
}

// Attachment binds an open connection, its authenticated user, and a room
// the connection is subscribed to. Runtime-only, never persisted. The same
// user may hold several attachments to one room (multiple tabs), each
// receiving events independently.
type Attachment struct {
	ConnID   string
	UserID   string
	Username string
	Sender   Sender
}

// RoomMessage is the payload of informational join/leave notices.
type RoomMessage struct {
	Msg string `json:"msg"`
}

// roomGroup holds the attachments of one room. Each group has its own
// mutex so attach/detach/broadcast for one room never contend with other
// rooms, and a broadcast always iterates a consistent snapshot.
type roomGroup struct {
	mu          sync.Mutex
	attachments map[string]*Attachment // connID -> attachment
}

// Hub routes live events to the attachments of a room. The outer lock
// guards only the room and connection indices; all per-room state is
// guarded by the room's own lock.
type Hub struct {
	members MembershipChecker

	mu    sync.RWMutex
	rooms map[string]*roomGroup      // roomID -> group
	conns map[string]map[string]bool // connID -> set of roomIDs (for disconnect cleanup)
}

// NewHub creates a new Hub backed by the given membership checker.
func NewHub(members MembershipChecker) *Hub {
	return &Hub{
		members: members,
		rooms:   make(map[string]*roomGroup),
		conns:   make(map[string]map[string]bool),
	}
}

// group returns the broadcast group for a room, creating it on first use.
func (h *Hub) group(roomID string) *roomGroup {
	h.mu.RLock()
	g := h.rooms[roomID]
	h.mu.RUnlock()
	if g != nil {
		return g
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if g = h.rooms[roomID]; g == nil {
		g = &roomGroup{attachments: make(map[string]*Attachment)}
		h.rooms[roomID] = g
	}
	return g
}

// Attach subscribes a connection to a room. Membership is re-checked here
// independently of any earlier HTTP authorization, since membership can
// change between page load and socket connect. On success the other
// attachments of the room are told the user entered; the new attachment
// itself receives nothing.
func (h *Hub) Attach(ctx context.Context, att *Attachment, roomID string) error {
	member, err := h.members.IsMember(ctx, att.UserID, roomID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return ErrNotAMember
	}

	g := h.group(roomID)
	g.mu.Lock()
	g.attachments[att.ConnID] = att
	targets := othersOf(g, att.ConnID)
	g.mu.Unlock()

	h.mu.Lock()
	if h.conns[att.ConnID] == nil {
		h.conns[att.ConnID] = make(map[string]bool)
	}
	h.conns[att.ConnID][roomID] = true
	h.mu.Unlock()

	deliver(targets, EventRoomMessage, RoomMessage{
		Msg: fmt.Sprintf("%s has entered the room.", att.Username),
	})

	log.Printf("[presence] conn %s attached to room %s (%s)", att.ConnID, roomID, att.Username)
	return nil
}

// Detach unsubscribes a connection from a room and tells the remaining
// attachments the user left. Detaching an already-detached connection is a
// no-op. Durable membership is untouched.
func (h *Hub) Detach(connID, roomID string) {
	h.mu.RLock()
	g := h.rooms[roomID]
	h.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	att, ok := g.attachments[connID]
	if ok {
		delete(g.attachments, connID)
	}
	targets := othersOf(g, connID)
	g.mu.Unlock()
	if !ok {
		return
	}

	h.mu.Lock()
	if set := h.conns[connID]; set != nil {
		delete(set, roomID)
		if len(set) == 0 {
			delete(h.conns, connID)
		}
	}
	h.mu.Unlock()

	deliver(targets, EventRoomMessage, RoomMessage{
		Msg: fmt.Sprintf("%s has left the room.", att.Username),
	})

	log.Printf("[presence] conn %s detached from room %s (%s)", connID, roomID, att.Username)
}

// DetachUser removes every attachment of a user in a room. Called after an
// explicit leave so stale tabs stop receiving room events.
func (h *Hub) DetachUser(roomID, userID string) {
	h.mu.RLock()
	g := h.rooms[roomID]
	h.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	var connIDs []string
	for connID, att := range g.attachments {
		if att.UserID == userID {
			connIDs = append(connIDs, connID)
		}
	}
	g.mu.Unlock()

	for _, connID := range connIDs {
		h.Detach(connID, roomID)
	}
}

// Disconnect detaches a connection from every room it was attached to. It
// is the cleanup path invoked by the transport's disconnect callback and
// runs for abnormal drops as well as clean closes.
func (h *Hub) Disconnect(connID string) {
	h.mu.RLock()
	var roomIDs []string
	for roomID := range h.conns[connID] {
		roomIDs = append(roomIDs, roomID)
	}
	h.mu.RUnlock()

	for _, roomID := range roomIDs {
		h.Detach(connID, roomID)
	}
}

// Broadcast delivers an event to every attachment of a room except the
// excluded connection, if any. Delivery is fire-and-forget per recipient.
func (h *Hub) Broadcast(roomID, event string, payload any, excludeConnID string) {
	h.mu.RLock()
	g := h.rooms[roomID]
	h.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	targets := othersOf(g, excludeConnID)
	g.mu.Unlock()

	deliver(targets, event, payload)
}

// RoomAttachmentCount returns the number of live attachments in a room.
func (h *Hub) RoomAttachmentCount(roomID string) int {
	h.mu.RLock()
	g := h.rooms[roomID]
	h.mu.RUnlock()
	if g == nil {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.attachments)
}

// ConnectionCount returns the number of connections attached to at least
// one room.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// othersOf snapshots the attachments of a group minus one connection.
// Callers must hold g.mu.
func othersOf(g *roomGroup, excludeConnID string) []*Attachment {
	targets := make([]*Attachment, 0, len(g.attachments))
	for connID, att := range g.attachments {
		if connID == excludeConnID {
			continue
		}
		targets = append(targets, att)
	}
	return targets
}

// deliver pushes an event to each target outside any lock.
func deliver(targets []*Attachment, event string, payload any) {
	for _, att := range targets {
		att.Sender.Send(event, payload)
	}
}
