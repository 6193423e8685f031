package api

import (
	"encoding/json"
	"time"

	"github.com/example/focusflow/modules/status"
)

// --- REST DTOs ---

// RegisterRequest is the API request to create an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the API request to log in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the API request to refresh tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the API response carrying a token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse is the API response for a created account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse is the API response for the current user.
type ProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Status        string    `json:"status"`
	GaugeLevel    int       `json:"gauge_level"`
	TotalMinutes  int       `json:"total_focus_minutes"`
	WeeklyMinutes int       `json:"weekly_focus_minutes"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRoomRequest is the API request to create a room.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	Password    string `json:"password"`
}

// JoinRoomRequest is the API request to enter a room.
type JoinRoomRequest struct {
	Password string `json:"password"`
}

// RoomResponse is the API response for a room.
type RoomResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	IsPublic      bool      `json:"is_public"`
	OwnerID       string    `json:"owner_id"`
	Members       int64     `json:"members"`
	LiveMembers   int       `json:"live_members,omitempty"`
	WeeklyAverage float64   `json:"weekly_focus_avg,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RoomListResponse is the API response for listing public rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// JoinRoomResponse is the API response for an entry attempt.
type JoinRoomResponse struct {
	Status string `json:"status"`
}

// RecordSessionRequest is the API request to record a focus session.
type RecordSessionRequest struct {
	TaskName        string `json:"task_name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SessionResponse is the API response for a focus session.
type SessionResponse struct {
	ID              string    `json:"id"`
	TaskName        string    `json:"task_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Timestamp       time.Time `json:"timestamp"`
}

// SessionListResponse is the API response for listing focus sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Live channel envelope ---

// WSMessage is the envelope for every frame on the live channel, in both
// directions.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound live channel event names.
const (
	WSTypeJoin         = "join"
	WSTypeLeave        = "leave"
	WSTypeUpdateStatus = "update_status"
	WSTypeRoomChat     = "room_chat"
)

// JoinPayload is the payload for join and leave events.
type JoinPayload struct {
	RoomID string `json:"room_id"`
}

// ChatPayload is the payload for room_chat events.
type ChatPayload struct {
	RoomID string `json:"room_id"`
	Msg    string `json:"msg"`
}

// StatusPayload is the payload for update_status events. Nil fields leave
// the stored value untouched.
type StatusPayload struct {
	RoomID     string             `json:"room_id"`
	Status     *string            `json:"status"`
	GaugeLevel *status.GaugeLevel `json:"gauge_level"`
}
