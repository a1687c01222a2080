package main

import (
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"support-desk-be/internal/model"
	"support-desk-be/pkg/database"
)

// Seeds one user per role for local development. Idempotent on email.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding development users...")

	seedUser(db, "Admin", "admin@example.com", "password", "admin", nil)
	supervisor := seedUser(db, "Supervisor One", "supervisor@example.com", "password", "supervisor", nil)
	seedUser(db, "Agent One", "agent@example.com", "password", "agent", &supervisor.Id)
	seedUser(db, "Candidate One", "candidate@example.com", "password", "candidate", nil)

	color.Green("✅ Seed completed.")
}

func seedUser(db *gorm.DB, name, email, password, role string, supervisorId *uuid.UUID) *model.User {
	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		color.Yellow("Skip %-12s %s (exists)", role, email)
		return &existing
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Error: lookup failed for %s: %v", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: failed to hash password: %v", err)
	}

	user := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		SupervisorId: supervisorId,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: failed to create %s: %v", email, err)
	}

	color.Green("Created %-12s %s", role, email)
	return &user
}
