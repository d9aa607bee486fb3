// Command seed loads development users and menu items into the database.
// Run with -destroy to wipe both tables instead.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Khaeshi/cafe-api/internal/config"
	"github.com/Khaeshi/cafe-api/internal/crypto"
	"github.com/Khaeshi/cafe-api/internal/db"
	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

type seedUser struct {
	name     string
	email    string
	password string
	role     string
	phone    string
}

var seedUsers = []seedUser{
	{name: "Admin User", email: "admin@cafe.local", password: "admin123", role: model.RoleAdmin, phone: "1234567890"},
	{name: "John Doe", email: "john@example.com", password: "password123", role: model.RoleUser, phone: "0987654321"},
	{name: "Jane Smith", email: "jane@example.com", password: "password123", role: model.RoleUser, phone: "5555555555"},
	{name: "Bob Johnson", email: "bob@example.com", password: "password123", role: model.RoleUser, phone: "4444444444"},
}

var seedMenu = []model.MenuItem{
	{Name: "Espresso", Price: 120, Description: "Rich and bold espresso shot", IsAvailable: true},
	{Name: "Latte", Price: 150, Description: "Creamy and smooth latte", IsAvailable: true},
	{Name: "Croissant", Price: 95, Description: "Buttery flaky croissant", IsAvailable: true},
}

func main() {
	destroy := flag.Bool("destroy", false, "delete all users and menu items")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	if *destroy {
		if err := store.DeleteAllUsers(ctx); err != nil {
			log.Fatalf("delete users failed: %v", err)
		}
		if err := store.DeleteAllMenuItems(ctx); err != nil {
			log.Fatalf("delete menu items failed: %v", err)
		}
		log.Println("all users and menu items deleted")
		return
	}

	if err := store.DeleteAllUsers(ctx); err != nil {
		log.Fatalf("clear users failed: %v", err)
	}
	if err := store.DeleteAllMenuItems(ctx); err != nil {
		log.Fatalf("clear menu items failed: %v", err)
	}

	now := time.Now().UTC()
	for _, seed := range seedUsers {
		hash, err := crypto.HashPassword(seed.password)
		if err != nil {
			log.Fatalf("hash password failed: %v", err)
		}
		user := model.User{
			ID:           uuid.NewString(),
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: hash,
			Role:         seed.role,
			Phone:        seed.phone,
			AuthProvider: model.ProviderLocal,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			log.Fatalf("create user %s failed: %v", seed.email, err)
		}
		log.Printf("seeded user %s (%s)", seed.name, seed.role)
	}

	for _, item := range seedMenu {
		item.ID = uuid.NewString()
		item.CreatedAt = now
		item.UpdatedAt = now
		if err := store.CreateMenuItem(ctx, item); err != nil {
			log.Fatalf("create menu item %s failed: %v", item.Name, err)
		}
		log.Printf("seeded menu item %s", item.Name)
	}

	log.Println("seed completed")
}
