package status

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	domain "github.com/example/focusflow/domain/user"
	"github.com/example/focusflow/modules/presence"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:         uuid.New().String(),
		Email:      username + "@example.com",
		Username:   username,
		Status:     "studying",
		GaugeLevel: 40,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// openMembers admits every user into every room.
type openMembers struct{}

func (openMembers) IsMember(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

// closedMembers admits nobody.
type closedMembers struct{}

func (closedMembers) IsMember(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

// recordingSender captures delivered events.
type recordingSender struct {
	mu     sync.Mutex
	events []any
}

func (s *recordingSender) Send(_ string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, payload)
}

func (s *recordingSender) payloads() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.events...)
}

func strPtr(s string) *string { return &s }

func gaugePtr(n int) *GaugeLevel {
	g := GaugeLevel(n)
	return &g
}

func TestGaugeLevel_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    GaugeLevel
		wantErr bool
	}{
		{name: "number", input: `42`, want: 42},
		{name: "zero", input: `0`, want: 0},
		{name: "numeric string", input: `"75"`, want: 75},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "negative number", input: `-5`, want: -5},
		{name: "word", input: `"high"`, wantErr: true},
		{name: "float", input: `3.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g GaugeLevel
			err := json.Unmarshal([]byte(tt.input), &g)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && g != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, g, tt.want)
			}
		})
	}
}

func TestUpdateStatus_RejectsNonMember(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	hub := presence.NewHub(closedMembers{})
	svc := NewService(NewStatusRepository(db), closedMembers{}, hub, 100)

	_, err := svc.UpdateStatus(context.Background(), "c1", user.ID, "room1", Update{
		Status: strPtr("deep work"),
	})
	if err != ErrNotAMember {
		t.Fatalf("UpdateStatus() error = %v, want ErrNotAMember", err)
	}

	// Nothing persisted.
	var stored domain.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if stored.Status != "studying" {
		t.Errorf("status = %q after rejected update, want %q", stored.Status, "studying")
	}
}

func TestUpdateStatus_PartialUpdates(t *testing.T) {
	tests := []struct {
		name       string
		update     Update
		wantStatus string
		wantGauge  int
	}{
		{
			name:       "status only keeps gauge",
			update:     Update{Status: strPtr("deep work")},
			wantStatus: "deep work",
			wantGauge:  40,
		},
		{
			name:       "gauge only keeps status",
			update:     Update{GaugeLevel: gaugePtr(80)},
			wantStatus: "studying",
			wantGauge:  80,
		},
		{
			name:       "both fields",
			update:     Update{Status: strPtr("break"), GaugeLevel: gaugePtr(15)},
			wantStatus: "break",
			wantGauge:  15,
		},
		{
			name:       "empty update keeps everything",
			update:     Update{},
			wantStatus: "studying",
			wantGauge:  40,
		},
		{
			name:       "gauge above bound clamps",
			update:     Update{GaugeLevel: gaugePtr(250)},
			wantStatus: "studying",
			wantGauge:  100,
		},
		{
			name:       "negative gauge clamps to zero",
			update:     Update{GaugeLevel: gaugePtr(-10)},
			wantStatus: "studying",
			wantGauge:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			user := createTestUser(t, db, "alice")
			hub := presence.NewHub(openMembers{})
			svc := NewService(NewStatusRepository(db), openMembers{}, hub, 100)

			updated, err := svc.UpdateStatus(context.Background(), "c1", user.ID, "room1", tt.update)
			if err != nil {
				t.Fatalf("UpdateStatus() error = %v", err)
			}
			if updated.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", updated.Status, tt.wantStatus)
			}
			if updated.GaugeLevel != tt.wantGauge {
				t.Errorf("gauge = %d, want %d", updated.GaugeLevel, tt.wantGauge)
			}

			var stored domain.User
			if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
				t.Fatalf("failed to reload user: %v", err)
			}
			if stored.Status != tt.wantStatus || stored.GaugeLevel != tt.wantGauge {
				t.Errorf("stored = (%q, %d), want (%q, %d)",
					stored.Status, stored.GaugeLevel, tt.wantStatus, tt.wantGauge)
			}
		})
	}
}

func TestUpdateStatus_BroadcastExcludesOrigin(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	hub := presence.NewHub(openMembers{})
	svc := NewService(NewStatusRepository(db), openMembers{}, hub, 100)

	origin := &recordingSender{}
	other := &recordingSender{}
	if err := hub.Attach(context.Background(), &presence.Attachment{
		ConnID: "c1", UserID: alice.ID, Username: "alice", Sender: origin,
	}, "room1"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := hub.Attach(context.Background(), &presence.Attachment{
		ConnID: "c2", UserID: "bob", Username: "bob", Sender: other,
	}, "room1"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	originBefore := len(origin.payloads())
	otherBefore := len(other.payloads())

	if _, err := svc.UpdateStatus(context.Background(), "c1", alice.ID, "room1", Update{
		Status:     strPtr("deep work"),
		GaugeLevel: gaugePtr(90),
	}); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	if got := len(origin.payloads()) - originBefore; got != 0 {
		t.Errorf("originating connection received %d events, want 0", got)
	}

	payloads := other.payloads()
	if got := len(payloads) - otherBefore; got != 1 {
		t.Fatalf("other connection received %d events, want 1", got)
	}
	update, ok := payloads[len(payloads)-1].(StatusUpdated)
	if !ok {
		t.Fatalf("payload type = %T, want StatusUpdated", payloads[len(payloads)-1])
	}
	if update.Username != "alice" || update.Status != "deep work" || update.GaugeLevel != 90 {
		t.Errorf("payload = %+v, want alice/deep work/90", update)
	}
}

func TestUpdateStatus_UnknownUser(t *testing.T) {
	db := setupTestDB(t)
	hub := presence.NewHub(openMembers{})
	svc := NewService(NewStatusRepository(db), openMembers{}, hub, 100)

	_, err := svc.UpdateStatus(context.Background(), "c1", "no-such-user", "room1", Update{
		Status: strPtr("deep work"),
	})
	if err != ErrUserNotFound {
		t.Errorf("UpdateStatus() error = %v, want ErrUserNotFound", err)
	}
}
