package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/focusflow/config"
	"github.com/example/focusflow/modules/auth"
	"github.com/example/focusflow/modules/chat"
	"github.com/example/focusflow/modules/presence"
	"github.com/example/focusflow/modules/rooms"
	"github.com/example/focusflow/modules/sessions"
	"github.com/example/focusflow/modules/status"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module is the HTTP API module with WebSocket support. It is the only
// module that talks to the outside world; everything else is reached
// through module references or the service container.
type Module struct {
	app *fiber.App
	cfg config.Config

	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort

	rooms    *rooms.Module
	presence *presence.Module
	status   *status.Module
	chat     *chat.Module
	sessions *sessions.Module

	hub *presence.Hub
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new API module.
func NewModule(
	cfg config.Config,
	roomsModule *rooms.Module,
	presenceModule *presence.Module,
	statusModule *status.Module,
	chatModule *chat.Module,
	sessionsModule *sessions.Module,
) *Module {
	return &Module{
		cfg:      cfg,
		rooms:    roomsModule,
		presence: presenceModule,
		status:   statusModule,
		chat:     chatModule,
		sessions: sessionsModule,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth adapter dependency not set")
	}

	// Presence builds its hub in its own Start; registration order
	// guarantees it ran before us.
	m.hub = m.presence.Hub()
	if m.hub == nil {
		return fmt.Errorf("presence hub not available")
	}

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	m.app.Use(loggerMiddleware())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.cfg.Port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.cfg.Port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":                 m.cfg.Port,
			"attached_connections": m.hub.ConnectionCount(),
		},
	}
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint: token comes in as a query parameter and is
	// checked before the upgrade completes.
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := m.authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	// Public auth endpoints
	authGroup := api.Group("/auth")
	authGroup.Post("/register", m.register)
	authGroup.Post("/login", m.login)
	authGroup.Post("/refresh", m.refresh)

	// Room directory: listing and detail are public, membership
	// changes require a token.
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:id", m.getRoom)
	api.Get("/rooms/:id/messages", m.getHistory)

	protected := api.Group("", AuthMiddleware(m.authAdapter))
	protected.Get("/profile", m.profile)
	protected.Post("/rooms", m.createRoom)
	protected.Post("/rooms/:id/join", m.joinRoom)
	protected.Post("/rooms/:id/leave", m.leaveRoom)
	protected.Post("/sessions", m.recordSession)
	protected.Get("/sessions", m.listSessions)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for WebSocket upgrade requests
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[api] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}
