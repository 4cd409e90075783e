package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"Grinders-Attendance-Backend/config"
	"Grinders-Attendance-Backend/config/middleware"
	"Grinders-Attendance-Backend/handlers"
	"Grinders-Attendance-Backend/repository"
	"Grinders-Attendance-Backend/service"
)

func SetupRoutes(app *fiber.App, cfg *config.AppConfig) {
	log.Println("Registering application routes...")

	// Repositories
	userRepo := repository.NewUserRepository()
	attendanceRepo := repository.NewAttendanceRepository()
	auditRepo := repository.NewAuditRepository()
	workScheduleRepo := repository.NewWorkScheduleRepository()

	// Services
	attendanceSvc := service.NewAttendanceService(cfg.Geofence, attendanceRepo, auditRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceSvc, attendanceRepo, userRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, attendanceRepo, auditRepo)
	workScheduleHandler := handlers.NewWorkScheduleHandler(workScheduleRepo)

	// Health check & Docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Grinders Attendance API",
			"status":  "running",
			"docs":    "/docs/index.html",
		})
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	// API v1 group
	api := app.Group("/api/v1")

	// Authentication routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", middleware.AuthMiddleware(), middleware.AdminMiddleware(), authHandler.Register)
	authGroup.Post("/logout", middleware.AuthMiddleware(), authHandler.Logout)

	// User routes
	protectedUserGroup := api.Group("/users", middleware.AuthMiddleware())
	protectedUserGroup.Post("/change-password", authHandler.ChangePassword)

	// Attendance routes, for every logged-in user
	attendanceGroup := api.Group("/attendance", middleware.AuthMiddleware())
	attendanceGroup.Post("/check", attendanceHandler.Check)
	attendanceGroup.Post("/preview", attendanceHandler.Preview)
	attendanceGroup.Get("/my-status", attendanceHandler.MyStatus)
	attendanceGroup.Get("/my-history", attendanceHandler.MyHistory)
	attendanceGroup.Post("/rebind-device", attendanceHandler.RebindDevice)

	// Work schedule routes
	scheduleGroup := api.Group("/work-schedules", middleware.AuthMiddleware())
	scheduleGroup.Get("/my-schedule", workScheduleHandler.MySchedule)
	adminScheduleGroup := scheduleGroup.Group("/", middleware.AdminMiddleware())
	adminScheduleGroup.Post("/", workScheduleHandler.CreateWorkSchedule)
	adminScheduleGroup.Get("/", workScheduleHandler.GetAllWorkSchedules)
	adminScheduleGroup.Delete("/:id", workScheduleHandler.DeleteWorkSchedule)

	// Admin routes
	adminGroup := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminMiddleware())
	adminGroup.Get("/users", adminHandler.GetAllUsers)
	adminGroup.Post("/users/:id/clear-device", adminHandler.ClearDeviceBinding)
	adminGroup.Post("/users/:id/rebind-qr", adminHandler.GenerateRebindQR)
	adminGroup.Get("/attendance/today", adminHandler.GetTodayAttendance)
	adminGroup.Get("/attendance/history", adminHandler.GetAttendanceHistory)
	adminGroup.Get("/audit-logs", adminHandler.GetAuditLogs)
	adminGroup.Get("/dashboard-stats", adminHandler.GetDashboardStats)

	log.Println("All application routes registered.")
	log.Println("Available routes:")
	log.Println("- POST /api/v1/auth/login")
	log.Println("- POST /api/v1/auth/register (admin only)")
	log.Println("- POST /api/v1/auth/logout (protected)")
	log.Println("- POST /api/v1/users/change-password (protected)")
	log.Println("- POST /api/v1/attendance/check (protected)")
	log.Println("- POST /api/v1/attendance/preview (protected)")
	log.Println("- GET /api/v1/attendance/my-status (protected)")
	log.Println("- GET /api/v1/attendance/my-history (protected)")
	log.Println("- POST /api/v1/attendance/rebind-device (protected)")
	log.Println("- GET /api/v1/work-schedules/my-schedule (protected)")
	log.Println("- POST /api/v1/work-schedules (admin only)")
	log.Println("- GET /api/v1/work-schedules (admin only)")
	log.Println("- DELETE /api/v1/work-schedules/:id (admin only)")
	log.Println("- GET /api/v1/admin/users (admin only)")
	log.Println("- POST /api/v1/admin/users/:id/clear-device (admin only)")
	log.Println("- POST /api/v1/admin/users/:id/rebind-qr (admin only)")
	log.Println("- GET /api/v1/admin/attendance/today (admin only)")
	log.Println("- GET /api/v1/admin/attendance/history (admin only)")
	log.Println("- GET /api/v1/admin/audit-logs (admin only)")
	log.Println("- GET /api/v1/admin/dashboard-stats (admin only)")
	log.Println("Swagger documentation available at: /docs/index.html")
}
