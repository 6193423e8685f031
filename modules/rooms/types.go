package rooms

import (
	"errors"
)

// Validation constants
const (
	MaxRoomNameLength    = 100
	MaxDescriptionLength = 255
)

// Sentinel errors for directory and membership operations.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotAMember         = errors.New("user is not a member of the room")
	ErrBadPassword        = errors.New("wrong room password")
	ErrRoomNameEmpty      = errors.New("room name cannot be empty")
	ErrRoomNameTooLong    = errors.New("room name exceeds maximum length")
	ErrDescriptionTooLong = errors.New("room description exceeds maximum length")
)

// Decision is the outcome of an entry authorization.
type Decision int

const (
	// Admitted means the user may enter; a membership row exists afterwards.
	Admitted Decision = iota
	// NeedsPassword means the room is private and no password was supplied;
	// the caller should prompt rather than treat this as a rejection.
	NeedsPassword
	// Rejected means the supplied password did not match.
	Rejected
)

// String returns a human-readable decision name.
func (d Decision) String() string {
	switch d {
	case Admitted:
		return "admitted"
	case NeedsPassword:
		return "needs_password"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// CreateRoomParams carries the attributes of a room to create.
type CreateRoomParams struct {
	Name        string
	Description string
	IsPublic    bool
	OwnerID     string
	Password    string
}
