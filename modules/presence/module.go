package presence

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
)

// Module wires the hub into the application lifecycle.
type Module struct {
	hub     *Hub
	members MembershipChecker
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new presence module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// SetMembershipChecker wires the membership authority in (called from main).
func (m *Module) SetMembershipChecker(members MembershipChecker) {
	m.members = members
}

// Start initializes the hub.
func (m *Module) Start(_ context.Context) error {
	if m.members == nil {
		return fmt.Errorf("membership checker dependency not set")
	}
	m.hub = NewHub(m.members)
	log.Println("[presence] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[presence] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.hub == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "hub not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"attached_connections": m.hub.ConnectionCount(),
		},
	}
}

// Hub returns the broadcast hub. Valid after Start.
func (m *Module) Hub() *Hub {
	return m.hub
}

// DetachUser drops every live attachment a user has in a room. No-op
// before Start.
func (m *Module) DetachUser(roomID, userID string) {
	if m.hub != nil {
		m.hub.DetachUser(roomID, userID)
	}
}
