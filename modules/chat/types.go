package chat

import (
	"errors"
	"time"
)

// Sentinel errors for chat posting.
var (
	ErrMessageEmpty   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	ErrNotAMember     = errors.New("user is not a member of the room")
)

// NewChatMessage is the payload broadcast to the whole room, including the
// sender: unlike status updates there is no local copy to deduplicate
// against, so chat is echoed uniformly.
type NewChatMessage struct {
	Username string `json:"username"`
	Msg      string `json:"msg"`
}

// HistoryEntry is one persisted message returned by the history query.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Msg       string    `json:"msg"`
	CreatedAt time.Time `json:"created_at"`
}
