package chat

import (
	domain "github.com/example/focusflow/domain/room"
	"gorm.io/gorm"
)

// MessageRepository handles chat message persistence using GORM.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

// Create persists a chat message.
func (r *MessageRepository) Create(msg *domain.ChatMessage) error {
	return r.db.Create(msg).Error
}

// History returns the most recent messages of a room in chronological
// order, capped at limit.
func (r *MessageRepository) History(roomID string, limit int) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	result := r.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
