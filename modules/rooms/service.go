package rooms

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/focusflow/domain/room"
	"github.com/example/focusflow/modules/auth"
	"github.com/google/uuid"
)

// Detacher removes a user's live attachments from a room after an explicit
// leave. Implemented by the presence hub; injected so the directory stays
// transport-free.
type Detacher interface {
	DetachUser(roomID, userID string)
}

// DirectoryService implements the room directory and the membership
// authority: the durable record of rooms and who may enter them.
type DirectoryService struct {
	repo     *RoomRepository
	hasher   *auth.PasswordHasher
	detacher Detacher
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(repo *RoomRepository, hasher *auth.PasswordHasher) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		hasher: hasher,
	}
}

// SetDetacher wires the presence hub in for leave cleanup.
func (s *DirectoryService) SetDetacher(d Detacher) {
	s.detacher = d
}

// CreateRoom creates a new room. A password, when given, is stored only as
// a salted hash. The owner becomes a member immediately.
func (s *DirectoryService) CreateRoom(_ context.Context, params CreateRoomParams) (*domain.Room, error) {
	if params.Name == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(params.Name) > MaxRoomNameLength {
		return nil, ErrRoomNameTooLong
	}
	if len(params.Description) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	room := &domain.Room{
		ID:          uuid.New().String(),
		Name:        params.Name,
		Description: params.Description,
		IsPublic:    params.IsPublic,
		OwnerID:     params.OwnerID,
		CreatedAt:   time.Now(),
	}

	if params.Password != "" {
		hash, err := s.hasher.Hash(params.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash room password: %w", err)
		}
		room.PasswordHash = hash
	}

	if err := s.repo.Create(room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if err := s.repo.AddMember(&domain.Membership{
		ID:        uuid.New().String(),
		RoomID:    room.ID,
		UserID:    params.OwnerID,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	return room, nil
}

// GetRoom retrieves a room by ID.
func (s *DirectoryService) GetRoom(_ context.Context, roomID string) (*domain.Room, error) {
	return s.repo.FindByID(roomID)
}

// ListPublicRooms returns all public rooms.
func (s *DirectoryService) ListPublicRooms(_ context.Context) ([]domain.Room, error) {
	return s.repo.ListPublic()
}

// DeleteRoom removes a room and cascades to chat history and memberships.
func (s *DirectoryService) DeleteRoom(_ context.Context, roomID string) error {
	return s.repo.Delete(roomID)
}

// SetPassword stores a salted hash of the password for a room.
func (s *DirectoryService) SetPassword(_ context.Context, roomID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash room password: %w", err)
	}
	return s.repo.SetPassword(roomID, hash)
}

// CheckPassword verifies a candidate against the room's stored hash. A room
// with no password set always fails the check rather than erroring, so a
// private passwordless room can never be entered by non-members.
func (s *DirectoryService) CheckPassword(room *domain.Room, candidate string) bool {
	if !room.HasPassword() {
		return false
	}
	return s.hasher.Verify(candidate, room.PasswordHash)
}

// AuthorizeEntry decides whether a user may enter a room. Already-admitted
// users are admitted again without a duplicate membership row. Public rooms
// admit anyone. Private rooms need the password: absent means the caller
// must prompt, wrong means rejected.
func (s *DirectoryService) AuthorizeEntry(ctx context.Context, userID, roomID, suppliedPassword string) (Decision, error) {
	room, err := s.repo.FindByID(roomID)
	if err != nil {
		return Rejected, err
	}

	member, err := s.repo.IsMember(userID, roomID)
	if err != nil {
		return Rejected, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return Admitted, nil
	}

	if !room.IsPublic {
		if suppliedPassword == "" {
			return NeedsPassword, nil
		}
		if !s.CheckPassword(room, suppliedPassword) {
			return Rejected, nil
		}
	}

	if err := s.repo.AddMember(&domain.Membership{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}); err != nil {
		return Rejected, fmt.Errorf("failed to add membership: %w", err)
	}

	return Admitted, nil
}

// Leave removes the user's membership row unconditionally if present and
// detaches any live attachments for that user in the room.
func (s *DirectoryService) Leave(_ context.Context, userID, roomID string) error {
	if err := s.repo.RemoveMember(userID, roomID); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	if s.detacher != nil {
		s.detacher.DetachUser(roomID, userID)
	}
	return nil
}

// IsMember reports durable membership. Used by the presence hub, the status
// synchronizer, and the chat relay.
func (s *DirectoryService) IsMember(_ context.Context, userID, roomID string) (bool, error) {
	return s.repo.IsMember(userID, roomID)
}

// CountMembers returns the number of durable members of a room.
func (s *DirectoryService) CountMembers(_ context.Context, roomID string) (int64, error) {
	return s.repo.CountMembers(roomID)
}

// MemberIDs returns the user IDs of all members of a room.
func (s *DirectoryService) MemberIDs(_ context.Context, roomID string) ([]string, error) {
	return s.repo.MemberIDs(roomID)
}
