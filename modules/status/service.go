package status

import (
	"context"
	"fmt"

	domain "github.com/example/focusflow/domain/user"
	"github.com/example/focusflow/modules/presence"
)

// Members answers durable membership questions for the room the update
// targets. A user who left via another tab must not be able to push
// updates, so live attachment state is not enough.
type Members interface {
	IsMember(ctx context.Context, userID, roomID string) (bool, error)
}

// Service relays live status changes: persist first, then fan out to the
// rest of the room.
type Service struct {
	repo     *StatusRepository
	members  Members
	hub      *presence.Hub
	maxGauge int
}

// NewService creates a new status service.
func NewService(repo *StatusRepository, members Members, hub *presence.Hub, maxGauge int) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		hub:      hub,
		maxGauge: maxGauge,
	}
}

// UpdateStatus applies a status push from one connection. A nil field
// keeps the prior value. The gauge is clamped into its bounds. The
// broadcast excludes the originating connection: that client already holds
// the authoritative local state and must not see an echo. A failed commit
// suppresses the broadcast entirely.
func (s *Service) UpdateStatus(ctx context.Context, originConnID, userID, roomID string, update Update) (*domain.User, error) {
	member, err := s.members.IsMember(ctx, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotAMember
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		user.Status = *update.Status
	}
	if update.GaugeLevel != nil {
		user.GaugeLevel = s.clamp(int(*update.GaugeLevel))
	}

	if err := s.repo.SaveStatus(user.ID, user.Status, user.GaugeLevel); err != nil {
		return nil, fmt.Errorf("failed to persist status: %w", err)
	}

	s.hub.Broadcast(roomID, presence.EventStatusUpdated, StatusUpdated{
		Username:   user.Username,
		Status:     user.Status,
		GaugeLevel: user.GaugeLevel,
	}, originConnID)

	return user, nil
}

func (s *Service) clamp(gauge int) int {
	if gauge < 0 {
		return 0
	}
	if gauge > s.maxGauge {
		return s.maxGauge
	}
	return gauge
}
