package handlers

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/repository"
)

const rebindTokenTTL = 15 * time.Minute

type AdminHandler struct {
	userRepo       *repository.UserRepository
	attendanceRepo repository.AttendanceRepository
	auditRepo      repository.AuditRepository
}

func NewAdminHandler(userRepo *repository.UserRepository, attendanceRepo repository.AttendanceRepository, auditRepo repository.AuditRepository) *AdminHandler {
	return &AdminHandler{
		userRepo:       userRepo,
		attendanceRepo: attendanceRepo,
		auditRepo:      auditRepo,
	}
}

func (h *AdminHandler) GetTodayAttendance(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	attendanceList, err := h.attendanceRepo.GetTodayAttendanceWithUserDetails(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load today's attendance"})
	}

	return c.Status(fiber.StatusOK).JSON(attendanceList)
}

// GetAttendanceHistory returns the paged event log joined with user details.
// Filters: user_id, type, from/to (inclusive day-bucket keys). The rows carry
// every field the report/CSV consumers need; formatting stays client-side.
func (h *AdminHandler) GetAttendanceHistory(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	filter := bson.M{}
	if userIDHex := c.Query("user_id"); userIDHex != "" {
		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is not a valid id"})
		}
		filter["user_id"] = userID
	}
	if eventType := c.Query("type"); eventType != "" {
		if eventType != models.EventCheckIn && eventType != models.EventCheckOut {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "type must be checkin or checkout"})
		}
		filter["type"] = eventType
	}
	if dateFilter, err := dayRangeFilter(c.Query("from"), c.Query("to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	} else if dateFilter != nil {
		filter["date_key"] = dateFilter
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	results, total, err := h.attendanceRepo.GetAllAttendanceWithUserDetails(ctx, filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load attendance history"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":  results,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetAuditLogs lists admission decisions, including every denial and its
// reason. Filters: user_id, decision, reason.
func (h *AdminHandler) GetAuditLogs(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 50))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	filter := bson.M{}
	if userIDHex := c.Query("user_id"); userIDHex != "" {
		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is not a valid id"})
		}
		filter["user_id"] = userID
	}
	if decision := c.Query("decision"); decision != "" {
		filter["decision"] = decision
	}
	if reason := c.Query("reason"); reason != "" {
		filter["reason"] = reason
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	records, total, err := h.auditRepo.List(ctx, filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load audit logs"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":  records,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *AdminHandler) GetAllUsers(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 50))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	users, total, err := h.userRepo.GetAllUsers(ctx, bson.M{}, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load users"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *AdminHandler) GetDashboardStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	today := models.DayKey(time.Now())

	totalEmployees, err := h.userRepo.CountByFilter(ctx, bson.M{"role": "employee"})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count employees"})
	}
	checkedInNow, err := h.userRepo.CountByFilter(ctx, bson.M{"last_event_type": models.EventCheckIn})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count checked-in users"})
	}
	boundDevices, err := h.userRepo.CountByFilter(ctx, bson.M{"device_id": bson.M{"$exists": true, "$ne": ""}})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count bound devices"})
	}
	eventsToday, err := h.attendanceRepo.CountEvents(ctx, bson.M{"date_key": today})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count today's events"})
	}

	startOfDay, _ := time.ParseInLocation("2006-01-02", today, time.UTC)
	denialsToday, err := h.auditRepo.CountRecords(ctx, bson.M{
		"decision":   models.DecisionDenied,
		"created_at": bson.M{"$gte": startOfDay},
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count today's denials"})
	}

	return c.Status(fiber.StatusOK).JSON(models.DashboardStats{
		TotalEmployees:   totalEmployees,
		CheckedInNow:     checkedInNow,
		EventsToday:      eventsToday,
		DenialsToday:     denialsToday,
		BoundDeviceCount: boundDevices,
	})
}

// ClearDeviceBinding removes a user's bound device so their next admission
// binds a new one. This is the administrative escape hatch for the otherwise
// irreversible binding.
func (h *AdminHandler) ClearDeviceBinding(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.userRepo.ClearDeviceBinding(ctx, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Device binding cleared"})
}

// GenerateRebindQR issues a short-lived one-time token for a user and renders
// it as a QR image the employee scans with their replacement device.
func (h *AdminHandler) GenerateRebindQR(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	token := uuid.New().String()
	expiresAt := time.Now().Add(rebindTokenTTL)

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.userRepo.SetRebindToken(ctx, userID, token, expiresAt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	png, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to render QR code"})
	}

	encodedString := base64.StdEncoding.EncodeToString(png)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":       "Rebind token created",
		"token":         token,
		"qr_code_image": "data:image/png;base64," + encodedString,
		"expires_at":    expiresAt,
	})
}

// dayRangeFilter builds a date_key filter from inclusive from/to day strings.
func dayRangeFilter(from, to string) (bson.M, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	rangeFilter := bson.M{}
	if from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			return nil, errInvalidDay("from")
		}
		rangeFilter["$gte"] = from
	}
	if to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			return nil, errInvalidDay("to")
		}
		rangeFilter["$lte"] = to
	}
	return rangeFilter, nil
}

type errInvalidDay string

func (e errInvalidDay) Error() string {
	return string(e) + " must be a date in the form 2006-01-02"
}
