// Package events defines the cross-module event contracts published on the
// application event bus.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// StatusChangedEvent is emitted after a member's live status or gauge level
// has been committed and relayed to their room.
type StatusChangedEvent struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	RoomID     string    `json:"room_id"`
	Status     string    `json:"status"`
	GaugeLevel int       `json:"gauge_level"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionRecordedEvent is emitted when a user records a completed focus
// session.
type SessionRecordedEvent struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	TaskName        string    `json:"task_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Timestamp       time.Time `json:"timestamp"`
}

// Event definitions for the focus domain.
var (
	StatusChangedV1 = helper.EventDefinition[StatusChangedEvent](
		"status",
		"StatusChanged",
		"v1",
	)

	SessionRecordedV1 = helper.EventDefinition[SessionRecordedEvent](
		"sessions",
		"SessionRecorded",
		"v1",
	)
)
