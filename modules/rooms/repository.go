package rooms

import (
	"errors"

	domain "github.com/example/focusflow/domain/room"
	"gorm.io/gorm"
)

// RoomRepository handles room and membership persistence using GORM.
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{
		db: db,
	}
}

// Create creates a new room.
func (r *RoomRepository) Create(room *domain.Room) error {
	return r.db.Create(room).Error
}

// FindByID finds a room by ID.
func (r *RoomRepository) FindByID(id string) (*domain.Room, error) {
	var room domain.Room
	result := r.db.First(&room, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, result.Error
	}
	return &room, nil
}

// ListPublic returns all public rooms.
func (r *RoomRepository) ListPublic() ([]domain.Room, error) {
	var list []domain.Room
	result := r.db.Where("is_public = ?", true).Order("created_at").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}
	return list, nil
}

// SetPassword stores the salted hash for a room. Never stores plaintext.
func (r *RoomRepository) SetPassword(roomID, passwordHash string) error {
	result := r.db.Model(&domain.Room{}).Where("id = ?", roomID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room and cascades to its chat history and memberships
// in a single transaction.
func (r *RoomRepository) Delete(roomID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&domain.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&domain.Membership{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", roomID).Delete(&domain.Room{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoomNotFound
		}
		return nil
	})
}

// IsMember reports whether a membership row exists for the user in the room.
func (r *RoomRepository) IsMember(userID, roomID string) (bool, error) {
	var count int64
	result := r.db.Model(&domain.Membership{}).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddMember creates a membership row. Adding an existing member is a no-op
// so joins stay idempotent.
func (r *RoomRepository) AddMember(membership *domain.Membership) error {
	exists, err := r.IsMember(membership.UserID, membership.RoomID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.db.Create(membership).Error
}

// RemoveMember deletes the membership row if present. No-op otherwise.
func (r *RoomRepository) RemoveMember(userID, roomID string) error {
	return r.db.Where("user_id = ? AND room_id = ?", userID, roomID).
		Delete(&domain.Membership{}).Error
}

// CountMembers returns the number of durable members of a room.
func (r *RoomRepository) CountMembers(roomID string) (int64, error) {
	var count int64
	result := r.db.Model(&domain.Membership{}).
		Where("room_id = ?", roomID).
		Count(&count)
	return count, result.Error
}

// MemberIDs returns the user IDs of all members of a room.
func (r *RoomRepository) MemberIDs(roomID string) ([]string, error) {
	var ids []string
	result := r.db.Model(&domain.Membership{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids)
	return ids, result.Error
}
