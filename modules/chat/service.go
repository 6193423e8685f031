package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/example/focusflow/domain/room"
	"github.com/example/focusflow/modules/presence"
	"github.com/google/uuid"
)

// Members answers durable membership questions for the room the message
// targets.
type Members interface {
	IsMember(ctx context.Context, userID, roomID string) (bool, error)
}

// Service validates, persists, and broadcasts room-scoped messages.
type Service struct {
	repo    *MessageRepository
	members Members
	hub     *presence.Hub
	maxLen  int
}

// NewService creates a new chat service. maxLen bounds message text; room
// chat is deliberately terse.
func NewService(repo *MessageRepository, members Members, hub *presence.Hub, maxLen int) *Service {
	return &Service{
		repo:    repo,
		members: members,
		hub:     hub,
		maxLen:  maxLen,
	}
}

// PostMessage validates and persists one message, then broadcasts it to
// every attachment of the room, sender included. Validation order: empty
// after trimming, over-length, then membership. A failed commit suppresses
// the broadcast.
func (s *Service) PostMessage(ctx context.Context, userID, username, roomID, text string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrMessageEmpty
	}
	// The bound is a character count; multibyte text must not burn
	// through it three bytes at a time.
	if utf8.RuneCountInString(text) > s.maxLen {
		return nil, ErrMessageTooLong
	}

	member, err := s.members.IsMember(ctx, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotAMember
	}

	msg := &domain.ChatMessage{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		Username:  username,
		Message:   text,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	s.hub.Broadcast(roomID, presence.EventNewChatMessage, NewChatMessage{
		Username: username,
		Msg:      text,
	}, "")

	return msg, nil
}

// History returns the most recent messages of a room.
func (s *Service) History(_ context.Context, roomID string, limit int) ([]HistoryEntry, error) {
	messages, err := s.repo.History(roomID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, HistoryEntry{
			ID:        msg.ID,
			Username:  msg.Username,
			Msg:       msg.Message,
			CreatedAt: msg.CreatedAt,
		})
	}
	return entries, nil
}
