// roomctl is the admin companion to the FocusFlow server. It opens the
// same SQLite database directly, so run it while the server is stopped
// or against a copy.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/example/focusflow/config"
	roomdomain "github.com/example/focusflow/domain/room"
	userdomain "github.com/example/focusflow/domain/user"
	"github.com/example/focusflow/modules/auth"
	"github.com/example/focusflow/modules/store"
	"gorm.io/gorm"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", cfg.DBPath, err)
	}

	switch os.Args[1] {
	case "list-users":
		listUsers(db)
	case "list-rooms":
		listRooms(db)
	case "delete-user":
		deleteUser(db, os.Args[2:])
	case "delete-room":
		deleteRoom(db, os.Args[2:])
	case "seed":
		seed(db, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: roomctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  list-users                      List all users")
	fmt.Fprintln(os.Stderr, "  list-rooms                      List all rooms")
	fmt.Fprintln(os.Stderr, "  delete-user  -id|-email|-username <value>")
	fmt.Fprintln(os.Stderr, "  delete-room  -id|-name <value>")
	fmt.Fprintln(os.Stderr, "  seed         [-users N] [-rooms N]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Database path comes from FOCUSFLOW_DB_PATH (default focusflow.db)\n")
}

func listUsers(db *gorm.DB) {
	var users []userdomain.User
	if err := db.Order("created_at").Find(&users).Error; err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if len(users) == 0 {
		log.Println("No users found.")
		return
	}

	log.Println("--- Users ---")
	for _, u := range users {
		log.Printf("ID: %s  Username: %s  Email: %s  Status: %s", u.ID, u.Username, u.Email, u.Status)
	}
	log.Printf("Total: %d", len(users))
}

func listRooms(db *gorm.DB) {
	var rooms []roomdomain.Room
	if err := db.Order("created_at").Find(&rooms).Error; err != nil {
		log.Fatalf("Failed to list rooms: %v", err)
	}
	if len(rooms) == 0 {
		log.Println("No rooms found.")
		return
	}

	log.Println("--- Rooms ---")
	for _, r := range rooms {
		var members int64
		db.Model(&roomdomain.Membership{}).Where("room_id = ?", r.ID).Count(&members)
		log.Printf("ID: %s  Name: %s  Owner: %s  Public: %t  Members: %d",
			r.ID, r.Name, r.OwnerID, r.IsPublic, members)
	}
	log.Printf("Total: %d", len(rooms))
}

func deleteUser(db *gorm.DB, args []string) {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	id := fs.String("id", "", "user ID")
	email := fs.String("email", "", "user email")
	username := fs.String("username", "", "username")
	_ = fs.Parse(args)

	users := auth.NewUserRepository(db)
	var user *userdomain.User
	var err error
	switch {
	case *id != "":
		user, err = users.FindByID(*id)
	case *email != "":
		user, err = users.FindByEmail(*email)
	case *username != "":
		user, err = users.FindByUsername(*username)
	default:
		log.Fatal("Specify one of -id, -email or -username")
	}
	if err != nil {
		log.Fatalf("User not found: %v", err)
	}

	// Take the user's rooms down with them, then every row that points
	// at the user.
	err = db.Transaction(func(tx *gorm.DB) error {
		var owned []roomdomain.Room
		if err := tx.Where("owner_id = ?", user.ID).Find(&owned).Error; err != nil {
			return err
		}
		for _, r := range owned {
			if err := tx.Where("room_id = ?", r.ID).Delete(&roomdomain.ChatMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("room_id = ?", r.ID).Delete(&roomdomain.Membership{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&r).Error; err != nil {
				return err
			}
		}

		for _, model := range []any{
			&roomdomain.Membership{},
			&roomdomain.ChatMessage{},
			&roomdomain.FocusSession{},
			&roomdomain.ActivityLog{},
		} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}

		return tx.Delete(user).Error
	})
	if err != nil {
		log.Fatalf("Failed to delete user: %v", err)
	}

	log.Printf("Deleted user %q (%s)", user.Username, user.ID)
}

func deleteRoom(db *gorm.DB, args []string) {
	fs := flag.NewFlagSet("delete-room", flag.ExitOnError)
	id := fs.String("id", "", "room ID")
	name := fs.String("name", "", "room name")
	_ = fs.Parse(args)

	var room roomdomain.Room
	var err error
	switch {
	case *id != "":
		err = db.First(&room, "id = ?", *id).Error
	case *name != "":
		err = db.First(&room, "name = ?", *name).Error
	default:
		log.Fatal("Specify one of -id or -name")
	}
	if err != nil {
		log.Fatalf("Room not found: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&roomdomain.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&roomdomain.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&room).Error
	})
	if err != nil {
		log.Fatalf("Failed to delete room: %v", err)
	}

	log.Printf("Deleted room %q (%s)", room.Name, room.ID)
}

// seed fills the database with fake users and rooms for local testing.
// Every seeded account gets the password "focusflow".
func seed(db *gorm.DB, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	userCount := fs.Int("users", 10, "number of users to create")
	roomCount := fs.Int("rooms", 3, "number of rooms to create")
	_ = fs.Parse(args)

	gofakeit.Seed(time.Now().UnixNano())

	hasher := auth.NewPasswordHasher()
	passwordHash, err := hasher.Hash("focusflow")
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := make([]userdomain.User, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		now := time.Now()
		u := userdomain.User{
			ID:           uuid.New().String(),
			Email:        gofakeit.Email(),
			Username:     gofakeit.Username(),
			PasswordHash: passwordHash,
			Status:       userdomain.DefaultStatus,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(&u).Error; err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, u)
	}
	log.Printf("Created %d users (password: focusflow)", len(users))

	if len(users) == 0 {
		return
	}

	for i := 0; i < *roomCount; i++ {
		owner := users[gofakeit.Number(0, len(users)-1)]
		room := roomdomain.Room{
			ID:          uuid.New().String(),
			Name:        gofakeit.BuzzWord() + " room",
			Description: gofakeit.Sentence(8),
			IsPublic:    true,
			OwnerID:     owner.ID,
			CreatedAt:   time.Now(),
		}
		if err := db.Create(&room).Error; err != nil {
			log.Fatalf("Failed to create room: %v", err)
		}

		// Owner plus a few random members.
		memberSet := map[string]bool{owner.ID: true}
		for j := 0; j < gofakeit.Number(1, len(users)); j++ {
			memberSet[users[gofakeit.Number(0, len(users)-1)].ID] = true
		}
		for userID := range memberSet {
			m := roomdomain.Membership{
				ID:        uuid.New().String(),
				RoomID:    room.ID,
				UserID:    userID,
				CreatedAt: time.Now(),
			}
			if err := db.Create(&m).Error; err != nil {
				log.Fatalf("Failed to create membership: %v", err)
			}
		}
		log.Printf("Created room %q with %d members", room.Name, len(memberSet))
	}
}
