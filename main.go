package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/focusflow/config"
	"github.com/example/focusflow/modules/api"
	"github.com/example/focusflow/modules/auth"
	"github.com/example/focusflow/modules/chat"
	"github.com/example/focusflow/modules/presence"
	"github.com/example/focusflow/modules/rooms"
	"github.com/example/focusflow/modules/sessions"
	"github.com/example/focusflow/modules/status"
	"github.com/example/focusflow/modules/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== FocusFlow - Shared Focus Rooms ===")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	storeModule := store.NewModule(cfg.DBPath)
	authModule := auth.NewModule(storeModule, cfg)
	roomsModule := rooms.NewModule(storeModule, authModule.Hasher())
	presenceModule := presence.NewModule()
	statusModule := status.NewModule(storeModule, presenceModule, roomsModule, cfg.MaxGaugeLevel)
	chatModule := chat.NewModule(storeModule, presenceModule, roomsModule, cfg.MaxChatMessageLen)
	sessionsModule := sessions.NewModule(storeModule, roomsModule)
	apiModule := api.NewModule(cfg, roomsModule, presenceModule, statusModule, chatModule, sessionsModule)

	// Cross-wire the parts that are not exposed via ServiceContainer:
	// the hub asks rooms who is a member, and rooms tells the hub when a
	// membership ends.
	presenceModule.SetMembershipChecker(roomsModule)
	roomsModule.SetDetacher(presenceModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - store: shared SQLite database (GORM)
	// - auth: accounts and tokens (ServiceProviderModule)
	// - rooms: room directory and membership authority
	// - presence: live attachment hub
	// - status/chat/sessions: room-scoped features on top of the hub
	// - api: driving adapter (Fiber HTTP/WebSocket server, depends on auth)
	app.Register(storeModule)
	app.Register(authModule)
	app.Register(roomsModule)
	app.Register(presenceModule)
	app.Register(statusModule)
	app.Register(chatModule)
	app.Register(sessionsModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Printf("  - Database: SQLite via GORM (%s)", cfg.DBPath)
	log.Println("  - Events: StatusChanged / SessionRecorded -> sessions activity log")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", cfg.Port)
	log.Println("  GET    /health                    - Health check")
	log.Println("  POST   /api/v1/auth/register      - Create an account")
	log.Println("  POST   /api/v1/auth/login         - Get a token pair")
	log.Println("  POST   /api/v1/auth/refresh       - Refresh tokens")
	log.Println("  GET    /api/v1/profile            - Profile with focus aggregates")
	log.Println("  GET    /api/v1/rooms              - List public rooms")
	log.Println("  POST   /api/v1/rooms              - Create a room")
	log.Println("  GET    /api/v1/rooms/:id          - Room details")
	log.Println("  POST   /api/v1/rooms/:id/join     - Join (password for private rooms)")
	log.Println("  POST   /api/v1/rooms/:id/leave    - Leave a room")
	log.Println("  GET    /api/v1/rooms/:id/messages - Chat history")
	log.Println("  POST   /api/v1/sessions           - Record a focus session")
	log.Println("  GET    /api/v1/sessions           - List focus sessions")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws?token=<access token>):", cfg.Port)
	log.Println("  Inbound:  join, leave, update_status, room_chat")
	log.Println("  Outbound: room_message, status_updated, new_chat_message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
