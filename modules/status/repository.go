package status

import (
	"errors"

	domain "github.com/example/focusflow/domain/user"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when the acting user does not resolve.
var ErrUserNotFound = errors.New("user not found")

// StatusRepository persists the live status fields of a user.
type StatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{
		db: db,
	}
}

// FindByID loads a user by ID.
func (r *StatusRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// SaveStatus commits the status and gauge level of a user as one update.
func (r *StatusRepository) SaveStatus(userID, status string, gaugeLevel int) error {
	result := r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{
			"status":      status,
			"gauge_level": gaugeLevel,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
