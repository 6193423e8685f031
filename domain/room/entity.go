// Package room holds the persistent entities of the focus room domain:
// rooms, their membership relation, chat history, and the focus session
// records that feed the weekly aggregates.
package room

import (
	"time"
)

// Room is a shared focus space. A room is never mutated after creation
// except through membership changes; deletion is an administrative action
// that cascades to chat history and memberships.
type Room struct {
	ID           string `gorm:"primaryKey;type:text"`
	Name         string `gorm:"not null;type:text"`
	Description  string `gorm:"type:text"`
	IsPublic     bool   `gorm:"not null;default:true"`
	PasswordHash string `gorm:"type:text"`
	OwnerID      string `gorm:"index;not null;type:text"`
	CreatedAt    time.Time
}

// TableName returns the table name for the Room entity.
func (Room) TableName() string {
	return "rooms"
}

// HasPassword reports whether entry to this room can be unlocked with a
// password at all.
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// Membership records that a user belongs to a room. It is independent of
// live connectivity: dropping a socket does not remove the row, only an
// explicit leave does. Indexed both ways so lookups by user and by room
// stay cheap.
type Membership struct {
	ID        string `gorm:"primaryKey;type:text"`
	RoomID    string `gorm:"uniqueIndex:idx_memberships_room_user;index;not null;type:text"`
	UserID    string `gorm:"uniqueIndex:idx_memberships_room_user;index;not null;type:text"`
	CreatedAt time.Time
}

// TableName returns the table name for the Membership entity.
func (Membership) TableName() string {
	return "memberships"
}

// ChatMessage is an immutable room-scoped message. Deleted only as a
// cascade of room deletion.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:text"`
	RoomID    string    `gorm:"index;not null;type:text"`
	UserID    string    `gorm:"index;not null;type:text"`
	Username  string    `gorm:"not null;type:text"`
	Message   string    `gorm:"not null;type:text"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName returns the table name for the ChatMessage entity.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// FocusSession records one completed focus block for a user.
type FocusSession struct {
	ID              string    `gorm:"primaryKey;type:text"`
	UserID          string    `gorm:"index;not null;type:text"`
	TaskName        string    `gorm:"not null;type:text"`
	DurationMinutes int       `gorm:"not null"`
	Timestamp       time.Time `gorm:"index"`
}

// TableName returns the table name for the FocusSession entity.
func (FocusSession) TableName() string {
	return "focus_sessions"
}

// ActivityLog is an append-only audit trail of notable user activity,
// written asynchronously from domain events.
type ActivityLog struct {
	ID           string `gorm:"primaryKey;type:text"`
	UserID       string `gorm:"index;not null;type:text"`
	ActivityType string `gorm:"not null;type:text"`
	Details      string `gorm:"type:text"`
	Timestamp    time.Time
}

// TableName returns the table name for the ActivityLog entity.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
