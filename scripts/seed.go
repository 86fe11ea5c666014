// Command seed bootstraps the default roles and the initial admin account
// against a live Firestore project. Same records as POST /api/seed, for
// operators who seed before first boot.
package main

import (
	"context"
	"log"

	"daynight/config"
	"daynight/db"
	"daynight/handlers"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	cfg.Validate()

	// Initialize Firestore
	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	log.Println("🌱 Starting database seeding...")

	hasUsers, err := firestoreDB.HasUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to check users: %v", err)
	}
	if hasUsers {
		log.Fatal("Users already exist; refusing to seed")
	}

	for name, role := range handlers.SeedRoles {
		role := role
		if err := firestoreDB.CreateRole(ctx, name, &role); err != nil {
			log.Fatalf("Failed to create role %s: %v", name, err)
		}
		log.Printf("  ✓ Created role: %s", name)
	}

	admin := handlers.SeedAdmin
	if _, err := firestoreDB.CreateUser(ctx, &admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("  ✓ Created admin user: %s", admin.Username)

	if err := firestoreDB.AppendLog(ctx, "Initial seed created via CLI"); err != nil {
		log.Printf("Warning: failed to append audit log: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}
