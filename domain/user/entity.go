package user

import (
	"time"
)

// DefaultStatus is the status assigned to users who have not pushed a live
// status yet.
const DefaultStatus = "offline"

// User represents a registered account. Status and GaugeLevel are the live
// fields synchronized to room members while the user works.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Email        string `gorm:"uniqueIndex;not null;type:text"`
	Username     string `gorm:"not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	Status       string `gorm:"not null;default:offline;type:text"`
	GaugeLevel   int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Claims represents the authenticated identity attached to a request or a
// live connection.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
