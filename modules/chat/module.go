// Package chat implements the chat relay: short room-scoped messages,
// validated, persisted, and echoed to the whole room.
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/example/focusflow/modules/presence"
	"github.com/example/focusflow/modules/store"
	"github.com/go-monolith/mono"
)

// Module wires the chat relay into the application lifecycle.
type Module struct {
	store    *store.Module
	presence *presence.Module
	members  Members
	maxLen   int
	service  *Service
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new chat module.
func NewModule(storeModule *store.Module, presenceModule *presence.Module, members Members, maxLen int) *Module {
	return &Module{
		store:    storeModule,
		presence: presenceModule,
		members:  members,
		maxLen:   maxLen,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Start initializes the chat service.
func (m *Module) Start(_ context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store dependency not started")
	}
	hub := m.presence.Hub()
	if hub == nil {
		return fmt.Errorf("presence dependency not started")
	}

	m.service = NewService(NewMessageRepository(db), m.members, hub, m.maxLen)

	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
	}
}

// Relay returns the chat service. Valid after Start.
func (m *Module) Relay() *Service {
	return m.service
}
