// Package status implements the status synchronizer: it commits a member's
// live status and gauge level, then relays the change to the other members
// of the room.
package status

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/example/focusflow/events"
	"github.com/example/focusflow/modules/presence"
	"github.com/example/focusflow/modules/store"
	"github.com/go-monolith/mono"
)

// Module wires the status service into the application lifecycle and
// publishes StatusChanged events for downstream consumers.
type Module struct {
	store    *store.Module
	presence *presence.Module
	members  Members
	maxGauge int
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new status module.
func NewModule(storeModule *store.Module, presenceModule *presence.Module, members Members, maxGauge int) *Module {
	return &Module{
		store:    storeModule,
		presence: presenceModule,
		members:  members,
		maxGauge: maxGauge,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "status"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.StatusChangedV1.ToBase(),
	}
}

// Start initializes the status service.
func (m *Module) Start(_ context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store dependency not started")
	}
	hub := m.presence.Hub()
	if hub == nil {
		return fmt.Errorf("presence dependency not started")
	}

	m.service = NewService(NewStatusRepository(db), m.members, hub, m.maxGauge)

	log.Println("[status] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[status] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
	}
}

// UpdateStatus applies a status push and publishes a StatusChanged event
// once the change is committed and relayed.
func (m *Module) UpdateStatus(ctx context.Context, originConnID, userID, roomID string, update Update) error {
	user, err := m.service.UpdateStatus(ctx, originConnID, userID, roomID, update)
	if err != nil {
		return err
	}

	event := events.StatusChangedEvent{
		UserID:     user.ID,
		Username:   user.Username,
		RoomID:     roomID,
		Status:     user.Status,
		GaugeLevel: user.GaugeLevel,
		Timestamp:  time.Now(),
	}
	if err := events.StatusChangedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish StatusChanged event", "error", err)
	}

	return nil
}
