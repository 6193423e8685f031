package presence

import (
	"context"
	"sync"
	"testing"
)

// recordingSender captures every event delivered to one connection.
type recordingSender struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	event   string
	payload any
}

func (s *recordingSender) Send(event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sentEvent{event: event, payload: payload})
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *recordingSender) last() (sentEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return sentEvent{}, false
	}
	return s.events[len(s.events)-1], true
}

// staticMembers answers membership from a fixed set of user:room pairs.
type staticMembers struct {
	allowed map[string]bool // "userID:roomID" -> member
}

func (m *staticMembers) IsMember(_ context.Context, userID, roomID string) (bool, error) {
	return m.allowed[userID+":"+roomID], nil
}

func allowAll() *staticMembers {
	return &staticMembers{allowed: map[string]bool{
		"alice:room1": true,
		"bob:room1":   true,
		"alice:room2": true,
	}}
}

func attach(t *testing.T, h *Hub, connID, userID, username, roomID string) *recordingSender {
	t.Helper()
	sender := &recordingSender{}
	err := h.Attach(context.Background(), &Attachment{
		ConnID:   connID,
		UserID:   userID,
		Username: username,
		Sender:   sender,
	}, roomID)
	if err != nil {
		t.Fatalf("Attach(%s, %s) error = %v", connID, roomID, err)
	}
	return sender
}

func TestHub_AttachRejectsNonMember(t *testing.T) {
	h := NewHub(allowAll())

	err := h.Attach(context.Background(), &Attachment{
		ConnID:   "c1",
		UserID:   "mallory",
		Username: "mallory",
		Sender:   &recordingSender{},
	}, "room1")
	if err != ErrNotAMember {
		t.Fatalf("Attach() error = %v, want ErrNotAMember", err)
	}
	if got := h.RoomAttachmentCount("room1"); got != 0 {
		t.Errorf("RoomAttachmentCount() = %d, want 0", got)
	}
}

func TestHub_AttachNotifiesOthersOnly(t *testing.T) {
	h := NewHub(allowAll())

	aliceSender := attach(t, h, "c1", "alice", "alice", "room1")
	bobSender := attach(t, h, "c2", "bob", "bob", "room1")

	// Alice was alone when she attached: nothing delivered anywhere.
	// Bob's attach notifies alice but not bob himself.
	if got := bobSender.count(); got != 0 {
		t.Errorf("joining sender received %d events, want 0", got)
	}
	if got := aliceSender.count(); got != 1 {
		t.Fatalf("existing sender received %d events, want 1", got)
	}

	ev, _ := aliceSender.last()
	if ev.event != EventRoomMessage {
		t.Errorf("event = %q, want %q", ev.event, EventRoomMessage)
	}
	msg, ok := ev.payload.(RoomMessage)
	if !ok {
		t.Fatalf("payload type = %T, want RoomMessage", ev.payload)
	}
	if msg.Msg != "bob has entered the room." {
		t.Errorf("msg = %q, want %q", msg.Msg, "bob has entered the room.")
	}
}

func TestHub_BroadcastExcludesConnection(t *testing.T) {
	h := NewHub(allowAll())

	aliceSender := attach(t, h, "c1", "alice", "alice", "room1")
	bobSender := attach(t, h, "c2", "bob", "bob", "room1")
	aliceBefore := aliceSender.count()

	h.Broadcast("room1", EventStatusUpdated, "payload", "c1")

	if got := aliceSender.count(); got != aliceBefore {
		t.Errorf("excluded sender received %d new events, want 0", got-aliceBefore)
	}
	if got := bobSender.count(); got != 1 {
		t.Errorf("other sender received %d events, want 1", got)
	}
}

func TestHub_BroadcastToAll(t *testing.T) {
	h := NewHub(allowAll())

	aliceSender := attach(t, h, "c1", "alice", "alice", "room1")
	bobSender := attach(t, h, "c2", "bob", "bob", "room1")
	aliceBefore := aliceSender.count()

	h.Broadcast("room1", EventNewChatMessage, "payload", "")

	if got := aliceSender.count() - aliceBefore; got != 1 {
		t.Errorf("alice received %d events, want 1", got)
	}
	if got := bobSender.count(); got != 1 {
		t.Errorf("bob received %d events, want 1", got)
	}
}

func TestHub_BroadcastUnknownRoomIsNoop(t *testing.T) {
	h := NewHub(allowAll())
	// Must not panic or create state.
	h.Broadcast("ghost", EventNewChatMessage, "payload", "")
	if got := h.RoomAttachmentCount("ghost"); got != 0 {
		t.Errorf("RoomAttachmentCount() = %d, want 0", got)
	}
}

func TestHub_DetachNotifiesRemaining(t *testing.T) {
	h := NewHub(allowAll())

	aliceSender := attach(t, h, "c1", "alice", "alice", "room1")
	attach(t, h, "c2", "bob", "bob", "room1")
	aliceBefore := aliceSender.count()

	h.Detach("c2", "room1")

	if got := h.RoomAttachmentCount("room1"); got != 1 {
		t.Errorf("RoomAttachmentCount() = %d, want 1", got)
	}
	if got := aliceSender.count() - aliceBefore; got != 1 {
		t.Fatalf("alice received %d events after detach, want 1", got)
	}

	ev, _ := aliceSender.last()
	msg := ev.payload.(RoomMessage)
	if msg.Msg != "bob has left the room." {
		t.Errorf("msg = %q, want %q", msg.Msg, "bob has left the room.")
	}
}

func TestHub_DetachIsIdempotent(t *testing.T) {
	h := NewHub(allowAll())

	aliceSender := attach(t, h, "c1", "alice", "alice", "room1")
	attach(t, h, "c2", "bob", "bob", "room1")
	aliceBefore := aliceSender.count()

	h.Detach("c2", "room1")
	h.Detach("c2", "room1")
	h.Detach("never-attached", "room1")

	// Only the first detach produces a notice.
	if got := aliceSender.count() - aliceBefore; got != 1 {
		t.Errorf("alice received %d events, want 1", got)
	}
}

func TestHub_ReattachAfterDetach(t *testing.T) {
	h := NewHub(allowAll())

	attach(t, h, "c1", "alice", "alice", "room1")
	h.Detach("c1", "room1")
	attach(t, h, "c1", "alice", "alice", "room1")

	if got := h.RoomAttachmentCount("room1"); got != 1 {
		t.Errorf("RoomAttachmentCount() = %d, want 1", got)
	}
}

func TestHub_DisconnectCleansEveryRoom(t *testing.T) {
	h := NewHub(allowAll())

	attach(t, h, "c1", "alice", "alice", "room1")
	attach(t, h, "c1", "alice", "alice", "room2")
	attach(t, h, "c2", "bob", "bob", "room1")

	if got := h.ConnectionCount(); got != 2 {
		t.Fatalf("ConnectionCount() = %d, want 2", got)
	}

	h.Disconnect("c1")

	if got := h.RoomAttachmentCount("room1"); got != 1 {
		t.Errorf("room1 attachments = %d, want 1", got)
	}
	if got := h.RoomAttachmentCount("room2"); got != 0 {
		t.Errorf("room2 attachments = %d, want 0", got)
	}
	if got := h.ConnectionCount(); got != 1 {
		t.Errorf("ConnectionCount() = %d, want 1", got)
	}
}

func TestHub_DetachUserDropsEveryTab(t *testing.T) {
	h := NewHub(allowAll())

	// alice has two tabs open on the same room.
	attach(t, h, "c1", "alice", "alice", "room1")
	attach(t, h, "c2", "alice", "alice", "room1")
	attach(t, h, "c3", "bob", "bob", "room1")

	h.DetachUser("room1", "alice")

	if got := h.RoomAttachmentCount("room1"); got != 1 {
		t.Errorf("RoomAttachmentCount() = %d, want 1", got)
	}
}

func TestHub_ConcurrentAttachDetach(t *testing.T) {
	members := &staticMembers{allowed: map[string]bool{}}
	for _, id := range []string{"u0", "u1", "u2", "u3"} {
		members.allowed[id+":room1"] = true
		members.allowed[id+":room2"] = true
	}
	h := NewHub(members)

	var wg sync.WaitGroup
	users := []string{"u0", "u1", "u2", "u3"}
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			connID := "conn-" + userID
			for j := 0; j < 50; j++ {
				room := "room1"
				if j%2 == 0 {
					room = "room2"
				}
				_ = h.Attach(context.Background(), &Attachment{
					ConnID:   connID,
					UserID:   userID,
					Username: userID,
					Sender:   &recordingSender{},
				}, room)
				h.Broadcast(room, EventNewChatMessage, "payload", "")
				h.Detach(connID, room)
			}
			h.Disconnect(connID)
		}(i, userID)
	}
	wg.Wait()

	if got := h.ConnectionCount(); got != 0 {
		t.Errorf("ConnectionCount() after teardown = %d, want 0", got)
	}
}
