package seeder

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/repository"
)

// SeedUsers creates the admin account and a handful of employee accounts when
// they do not exist yet. Safe to run on every startup.
func SeedUsers(userRepo *repository.UserRepository) {
	log.Println("🌱 Seeding users...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ failed to hash seed password: %v", err)
	}

	adminEmail := "admin@thegrinders.com"
	adminUser, err := userRepo.FindUserByEmail(ctx, adminEmail)
	if err == nil && adminUser != nil {
		log.Println("✅ Admin user already exists, skipping.")
	} else {
		newAdmin := &models.User{
			Name:     "Grinders Admin",
			Email:    adminEmail,
			Password: string(hashedPassword),
			Role:     "admin",
			Active:   true,
		}
		if _, err := userRepo.CreateUser(ctx, newAdmin); err != nil {
			log.Printf("❌ failed to seed admin user: %v", err)
		} else {
			fmt.Printf("✔ Admin user (%s) created.\n", newAdmin.Email)
		}
	}

	employees := []struct {
		Name  string
		Email string
	}{
		{"Sara Haddad", "sara@thegrinders.com"},
		{"Omar Khalil", "omar@thegrinders.com"},
		{"Lina Yousif", "lina@thegrinders.com"},
	}

	for _, e := range employees {
		existing, err := userRepo.FindUserByEmail(ctx, e.Email)
		if err == nil && existing != nil {
			fmt.Printf("Skipping: user %s already exists.\n", e.Email)
			continue
		}

		newEmployee := &models.User{
			Name:     e.Name,
			Email:    e.Email,
			Password: string(hashedPassword),
			Role:     "employee",
			Active:   true,
		}
		if _, err := userRepo.CreateUser(ctx, newEmployee); err != nil {
			log.Printf("❌ failed to seed user %s: %v", e.Name, err)
		} else {
			fmt.Printf("✔ Employee %s (%s) created.\n", newEmployee.Name, newEmployee.Email)
		}
	}

	log.Println("✅ User seeding finished.")
}
