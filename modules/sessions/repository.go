package sessions

import (
	"time"

	domain "github.com/example/focusflow/domain/room"
	"gorm.io/gorm"
)

// SessionRepository handles focus session and activity log persistence.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

// Create persists a focus session.
func (r *SessionRepository) Create(session *domain.FocusSession) error {
	return r.db.Create(session).Error
}

// ListByUser returns a user's sessions, newest first.
func (r *SessionRepository) ListByUser(userID string) ([]domain.FocusSession, error) {
	var sessions []domain.FocusSession
	result := r.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&sessions)
	return sessions, result.Error
}

// TotalMinutes sums all focus minutes of a user.
func (r *SessionRepository) TotalMinutes(userID string) (int, error) {
	return r.sumMinutes(r.db.Where("user_id = ?", userID))
}

// MinutesSince sums the focus minutes of a user recorded at or after the
// given time.
func (r *SessionRepository) MinutesSince(userID string, since time.Time) (int, error) {
	return r.sumMinutes(r.db.Where("user_id = ? AND timestamp >= ?", userID, since))
}

// MinutesForUsersSince sums the focus minutes of a set of users recorded at
// or after the given time.
func (r *SessionRepository) MinutesForUsersSince(userIDs []string, since time.Time) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	return r.sumMinutes(r.db.Where("user_id IN ? AND timestamp >= ?", userIDs, since))
}

func (r *SessionRepository) sumMinutes(tx *gorm.DB) (int, error) {
	var total *int
	result := tx.Model(&domain.FocusSession{}).
		Select("SUM(duration_minutes)").
		Scan(&total)
	if result.Error != nil {
		return 0, result.Error
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// LogActivity appends one activity log row.
func (r *SessionRepository) LogActivity(entry *domain.ActivityLog) error {
	return r.db.Create(entry).Error
}
