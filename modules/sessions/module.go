// Package sessions records completed focus blocks, computes the weekly
// aggregates, and consumes domain events into the activity log.
package sessions

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	domain "github.com/example/focusflow/domain/room"
	"github.com/example/focusflow/events"
	"github.com/example/focusflow/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// Module wires the sessions service into the application lifecycle.
type Module struct {
	store    *store.Module
	roster   Roster
	service  *Service
	repo     *SessionRepository
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new sessions module.
func NewModule(storeModule *store.Module, roster Roster) *Module {
	return &Module{
		store:  storeModule,
		roster: roster,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "sessions"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SessionRecordedV1.ToBase(),
	}
}

// RegisterEventConsumers registers the activity log consumers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.StatusChangedV1, m.handleStatusChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register StatusChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.SessionRecordedV1, m.handleSessionRecorded, m,
	); err != nil {
		return fmt.Errorf("failed to register SessionRecorded consumer: %w", err)
	}

	log.Println("[sessions] Registered event consumers: StatusChanged, SessionRecorded")
	return nil
}

// Start initializes the sessions service.
func (m *Module) Start(_ context.Context) error {
	db := m.store.DB()
	if db == nil {
		return fmt.Errorf("store dependency not started")
	}

	m.repo = NewSessionRepository(db)
	m.service = NewService(m.repo, m.roster)

	log.Println("[sessions] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[sessions] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.service != nil,
		Message: "operational",
	}
}

// Tracker returns the sessions service. Valid after Start.
func (m *Module) Tracker() *Service {
	return m.service
}

// RecordSession stores a focus block and publishes a SessionRecorded event.
func (m *Module) RecordSession(ctx context.Context, userID, taskName string, durationMinutes int) (*domain.FocusSession, error) {
	session, err := m.service.RecordSession(ctx, userID, taskName, durationMinutes)
	if err != nil {
		return nil, err
	}

	event := events.SessionRecordedEvent{
		SessionID:       session.ID,
		UserID:          session.UserID,
		TaskName:        session.TaskName,
		DurationMinutes: session.DurationMinutes,
		Timestamp:       session.Timestamp,
	}
	if err := events.SessionRecordedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish SessionRecorded event", "error", err)
	}

	return session, nil
}

// handleStatusChanged appends a status change to the activity log.
func (m *Module) handleStatusChanged(_ context.Context, event events.StatusChangedEvent, _ *mono.Msg) error {
	return m.repo.LogActivity(&domain.ActivityLog{
		ID:           uuid.New().String(),
		UserID:       event.UserID,
		ActivityType: "status_change",
		Details:      fmt.Sprintf("%s (gauge %d)", event.Status, event.GaugeLevel),
		Timestamp:    time.Now(),
	})
}

// handleSessionRecorded appends a recorded session to the activity log.
func (m *Module) handleSessionRecorded(_ context.Context, event events.SessionRecordedEvent, _ *mono.Msg) error {
	return m.repo.LogActivity(&domain.ActivityLog{
		ID:           uuid.New().String(),
		UserID:       event.UserID,
		ActivityType: "session_recorded",
		Details:      fmt.Sprintf("%s (%d min)", event.TaskName, event.DurationMinutes),
		Timestamp:    time.Now(),
	})
}
