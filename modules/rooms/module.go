// Package rooms implements the room directory and membership authority:
// durable rooms, entry authorization (public vs. password-protected), and
// the membership relation everything else checks against.
package rooms

import (
	"context"
	"fmt"
	"log"

	"github.com/example/focusflow/modules/auth"
	"github.com/example/focusflow/modules/store"
	"github.com/go-monolith/mono"
)

// Module wires the directory service into the application lifecycle.
type Module struct {
	store    *store.Module
	hasher   *auth.PasswordHasher
	detacher Detacher
	service  *DirectoryService
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new rooms module. The hasher is shared with auth so
// room passwords and account passwords use the same hashing policy.
func NewModule(storeModule *store.Module, hasher *auth.PasswordHasher) *Module {
	return &Module{
		store:  storeModule,
		hasher: hasher,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rooms"
}

// SetDetacher wires the live-channel detacher in (called from main, before
// Start).
func (m *Module) SetDetacher(d Detacher) {
	m.detacher = d
}

// Start initializes the directory service.
func (m *Module) Start(_ context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store dependency not started")
	}

	m.service = NewDirectoryService(NewRoomRepository(db), m.hasher)
	if m.detacher != nil {
		m.service.SetDetacher(m.detacher)
	}

	log.Println("[rooms] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[rooms] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
	}
}

// Directory returns the directory service. Valid after Start.
func (m *Module) Directory() *DirectoryService {
	return m.service
}

// IsMember implements the membership check used by the presence hub.
func (m *Module) IsMember(ctx context.Context, userID, roomID string) (bool, error) {
	return m.service.IsMember(ctx, userID, roomID)
}

// MemberIDs implements the roster lookup used for room-level aggregates.
func (m *Module) MemberIDs(ctx context.Context, roomID string) ([]string, error) {
	return m.service.MemberIDs(ctx, roomID)
}
