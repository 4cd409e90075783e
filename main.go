package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"Grinders-Attendance-Backend/config"
	"Grinders-Attendance-Backend/repository"
	"Grinders-Attendance-Backend/router"
	"Grinders-Attendance-Backend/seeder"

	_ "Grinders-Attendance-Backend/docs"
	_ "time/tzdata"
)

// @title Grinders Attendance API
// @version 1.0
// @description Geofenced attendance backend for The Grinders cafe: check-in/check-out gated by GPS distance, accuracy, and device binding, with a full audit trail.
//
// @contact.name API Support
// @contact.email support@thegrinders.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:3000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the PASETO token.
//
// @tag.name Auth
// @tag.description Authentication endpoints
//
// @tag.name Attendance
// @tag.description Check-in/check-out and status endpoints
//
// @tag.name Admin
// @tag.description Admin only endpoints
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.LoadConfig()

	config.MongoConnect()
	config.InitDatabase()
	defer config.DisconnectDB()

	seeder.SeedUsers(repository.NewUserRepository())

	app := fiber.New()

	config.SetupCORS(app)
	app.Use(logger.New())

	router.SetupRoutes(app, cfg)

	log.Printf("Server running on port %s", cfg.Port)
	log.Printf("API Documentation: http://localhost:%s/docs/index.html", cfg.Port)
	log.Printf("Health Check: http://localhost:%s/", cfg.Port)
	log.Printf("CORS enabled for origins: %v", config.GetAllowedOrigins())
	log.Fatal(app.Listen(":" + cfg.Port))
}
