package api

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	domain "github.com/example/focusflow/domain/user"
	"github.com/example/focusflow/modules/auth"
	"github.com/example/focusflow/modules/rooms"
	"github.com/example/focusflow/modules/sessions"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 50

// Register handles POST /api/v1/auth/register.
func (m *Module) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email, username and password are required",
		})
	}

	authReq := auth.RegisterRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		m.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return m.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Email:     resp.Email,
		Username:  resp.Username,
		CreatedAt: resp.CreatedAt,
	})
}

// login handles POST /api/v1/auth/login.
func (m *Module) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Email and password are required",
		})
	}

	authReq := auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		m.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return m.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// refresh handles POST /api/v1/auth/refresh.
func (m *Module) refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Refresh token is required",
		})
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.RefreshToken,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		m.authContainer,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// profile handles GET /api/v1/profile.
func (m *Module) profile(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	user, err := m.authAdapter.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve user profile",
		})
	}

	tracker := m.sessions.Tracker()
	total, err := tracker.TotalFocusMinutes(c.UserContext(), user.ID)
	if err != nil {
		total = 0
	}
	weekly, err := tracker.WeeklyFocusMinutes(c.UserContext(), user.ID)
	if err != nil {
		weekly = 0
	}

	return c.Status(fiber.StatusOK).JSON(ProfileResponse{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		Status:        user.Status,
		GaugeLevel:    user.GaugeLevel,
		TotalMinutes:  total,
		WeeklyMinutes: weekly,
		CreatedAt:     user.CreatedAt,
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	list, err := m.rooms.Directory().ListPublicRooms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(list)),
	}
	for _, room := range list {
		members, _ := m.rooms.Directory().CountMembers(c.UserContext(), room.ID)
		response.Rooms = append(response.Rooms, RoomResponse{
			ID:          room.ID,
			Name:        room.Name,
			Description: room.Description,
			IsPublic:    room.IsPublic,
			OwnerID:     room.OwnerID,
			Members:     members,
			LiveMembers: m.hub.RoomAttachmentCount(room.ID),
			CreatedAt:   room.CreatedAt,
		})
	}

	return c.JSON(response)
}

// createRoom handles POST /api/v1/rooms.
func (m *Module) createRoom(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	room, err := m.rooms.Directory().CreateRoom(c.UserContext(), rooms.CreateRoomParams{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    isPublic,
		OwnerID:     claims.UserID,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrRoomNameEmpty),
			errors.Is(err, rooms.ErrRoomNameTooLong),
			errors.Is(err, rooms.ErrDescriptionTooLong):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "create_failed",
				Message: "Failed to create room",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(RoomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		IsPublic:    room.IsPublic,
		OwnerID:     room.OwnerID,
		Members:     1,
		CreatedAt:   room.CreatedAt,
	})
}

// getRoom handles GET /api/v1/rooms/:id.
func (m *Module) getRoom(c *fiber.Ctx) error {
	roomID := c.Params("id")

	room, err := m.rooms.Directory().GetRoom(c.UserContext(), roomID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Room not found",
		})
	}

	members, _ := m.rooms.Directory().CountMembers(c.UserContext(), room.ID)
	weeklyAvg, _ := m.sessions.Tracker().RoomWeeklyAverage(c.UserContext(), room.ID)

	return c.JSON(RoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		Description:   room.Description,
		IsPublic:      room.IsPublic,
		OwnerID:       room.OwnerID,
		Members:       members,
		LiveMembers:   m.hub.RoomAttachmentCount(room.ID),
		WeeklyAverage: weeklyAvg,
		CreatedAt:     room.CreatedAt,
	})
}

// joinRoom handles POST /api/v1/rooms/:id/join.
func (m *Module) joinRoom(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req JoinRoomRequest
	// Body is optional for public rooms
	_ = c.BodyParser(&req)

	decision, err := m.rooms.Directory().AuthorizeEntry(c.UserContext(), claims.UserID, c.Params("id"), req.Password)
	if err != nil {
		if errors.Is(err, rooms.ErrRoomNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: "Room not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "join_failed",
			Message: "Failed to join room",
		})
	}

	switch decision {
	case rooms.Admitted:
		return c.JSON(JoinRoomResponse{Status: decision.String()})
	case rooms.NeedsPassword:
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "password_required",
			Message: "This room requires a password",
		})
	default:
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "wrong_password",
			Message: "Wrong room password",
		})
	}
}

// leaveRoom handles POST /api/v1/rooms/:id/leave.
func (m *Module) leaveRoom(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	if err := m.rooms.Directory().Leave(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "leave_failed",
			Message: "Failed to leave room",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// getHistory handles GET /api/v1/rooms/:id/messages.
func (m *Module) getHistory(c *fiber.Ctx) error {
	roomID := c.Params("id")
	if _, err := m.rooms.Directory().GetRoom(c.UserContext(), roomID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Room not found",
		})
	}

	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	entries, err := m.chat.Relay().History(c.UserContext(), roomID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"room_id":  roomID,
		"messages": entries,
	})
}

// recordSession handles POST /api/v1/sessions.
func (m *Module) recordSession(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	var req RecordSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	session, err := m.sessions.RecordSession(c.UserContext(), claims.UserID, req.TaskName, req.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrTaskNameEmpty), errors.Is(err, sessions.ErrInvalidDuration):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "record_failed",
				Message: "Failed to record session",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		ID:              session.ID,
		TaskName:        session.TaskName,
		DurationMinutes: session.DurationMinutes,
		Timestamp:       session.Timestamp,
	})
}

// listSessions handles GET /api/v1/sessions.
func (m *Module) listSessions(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
	}

	list, err := m.sessions.Tracker().ListSessions(c.UserContext(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list sessions",
		})
	}

	response := SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(list)),
	}
	for _, session := range list {
		response.Sessions = append(response.Sessions, SessionResponse{
			ID:              session.ID,
			TaskName:        session.TaskName,
			DurationMinutes: session.DurationMinutes,
			Timestamp:       session.Timestamp,
		})
	}

	return c.JSON(response)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":               "api",
			"attached_connections": m.hub.ConnectionCount(),
		},
	})
}

// handleAuthError maps auth service errors to HTTP responses without
// exposing internals.
func (m *Module) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid email format",
		})
	case strings.Contains(errStr, "username is required"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Username is required",
		})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at least 8 characters",
		})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Password must be at most 72 characters",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
