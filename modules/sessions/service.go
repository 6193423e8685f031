package sessions

import (
	"context"
	"errors"
	"math"
	"time"

	domain "github.com/example/focusflow/domain/room"
	"github.com/google/uuid"
)

// Sentinel errors for session recording.
var (
	ErrTaskNameEmpty   = errors.New("task name cannot be empty")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
)

// Roster lists the durable members of a room, for the room-level weekly
// average.
type Roster interface {
	MemberIDs(ctx context.Context, roomID string) ([]string, error)
}

// Service records focus sessions and computes the weekly aggregates shown
// on dashboards and room pages.
type Service struct {
	repo   *SessionRepository
	roster Roster
}

// NewService creates a new sessions service.
func NewService(repo *SessionRepository, roster Roster) *Service {
	return &Service{
		repo:   repo,
		roster: roster,
	}
}

// RecordSession stores one completed focus block.
func (s *Service) RecordSession(_ context.Context, userID, taskName string, durationMinutes int) (*domain.FocusSession, error) {
	if taskName == "" {
		return nil, ErrTaskNameEmpty
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	session := &domain.FocusSession{
		ID:              uuid.New().String(),
		UserID:          userID,
		TaskName:        taskName,
		DurationMinutes: durationMinutes,
		Timestamp:       time.Now(),
	}
	if err := s.repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Service) ListSessions(_ context.Context, userID string) ([]domain.FocusSession, error) {
	return s.repo.ListByUser(userID)
}

// TotalFocusMinutes sums all focus minutes of a user.
func (s *Service) TotalFocusMinutes(_ context.Context, userID string) (int, error) {
	return s.repo.TotalMinutes(userID)
}

// WeeklyFocusMinutes sums a user's focus minutes since the start of the
// current week.
func (s *Service) WeeklyFocusMinutes(_ context.Context, userID string) (int, error) {
	return s.repo.MinutesSince(userID, startOfWeek(time.Now()))
}

// RoomWeeklyAverage returns the average focus minutes per member of a room
// for the current week, rounded to one decimal place. Empty rooms average
// zero.
func (s *Service) RoomWeeklyAverage(ctx context.Context, roomID string) (float64, error) {
	memberIDs, err := s.roster.MemberIDs(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if len(memberIDs) == 0 {
		return 0, nil
	}

	total, err := s.repo.MinutesForUsersSince(memberIDs, startOfWeek(time.Now()))
	if err != nil {
		return 0, err
	}

	avg := float64(total) / float64(len(memberIDs))
	return math.Round(avg*10) / 10, nil
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}
