package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"Grinders-Attendance-Backend/models"
	"Grinders-Attendance-Backend/pkg/geofence"
	"Grinders-Attendance-Backend/pkg/geoloc"
	util "Grinders-Attendance-Backend/pkg/utils"
	"Grinders-Attendance-Backend/repository"
	"Grinders-Attendance-Backend/service"
)

type AttendanceHandler struct {
	svc      *service.AttendanceService
	repo     repository.AttendanceRepository
	userRepo *repository.UserRepository

	// One admission attempt in flight per user. The UI disables the button
	// during an attempt, but the server does not trust the UI for that.
	inflight sync.Map
}

func NewAttendanceHandler(svc *service.AttendanceService, repo repository.AttendanceRepository, userRepo *repository.UserRepository) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, repo: repo, userRepo: userRepo}
}

// Check handles a check-in/check-out submission. The payload carries either a
// position fix or, when the device sensor failed, the platform error code;
// the decision itself is made entirely server-side.
func (h *AttendanceHandler) Check(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	var payload models.AttendanceCheckPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	if errors := util.ValidateStruct(payload); errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errors})
	}

	muIface, _ := h.inflight.LoadOrStore(claims.UserID, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	if !mu.TryLock() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Another attempt is already in progress"})
	}
	defer mu.Unlock()

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	req := service.AdmissionRequest{
		UserID: claims.UserID,
		Email:  claims.Email,
		Type:   payload.Type,
		Fix: geofence.Fix{
			Coordinate: geofence.Coordinate{Lat: payload.Lat, Lng: payload.Lng},
			AccuracyM:  payload.AccuracyM,
			CapturedAt: time.Now(),
		},
		DeviceID:   payload.DeviceID,
		ClientTime: payload.ClientTime,
	}

	// Sensor failures short-circuit before any geofence or device check.
	if payload.LocationError != 0 {
		result := h.svc.ReportSensorFailure(ctx, req, geoloc.FromCode(payload.LocationError))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  result.Message,
			"reason": result.Reason,
		})
	}

	result, err := h.svc.AttemptAdmission(ctx, req)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Attendance was not saved. Please try again.",
		})
	}

	if !result.Admitted {
		return c.Status(fiber.StatusForbidden).JSON(models.CheckDeniedResponse{
			Error:     result.Message,
			Reason:    result.Reason,
			DistanceM: result.DistanceM,
			AccuracyM: result.AccuracyM,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.CheckSuccessResponse{
		Message:   result.Message,
		Type:      result.EventType,
		DistanceM: result.DistanceM,
		AccuracyM: result.AccuracyM,
	})
}

// Preview evaluates a fix without writing anything and reports which action
// the UI may offer. Clients poll this every 10-20 seconds while the employee
// page is open; it never auto-submits.
func (h *AttendanceHandler) Preview(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	var payload models.AttendancePreviewPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	if errors := util.ValidateStruct(payload); errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errors})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	status, err := h.repo.GetStatus(ctx, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load attendance status"})
	}

	verdict := geofence.Evaluate(h.svc.Geofence(), geofence.Fix{
		Coordinate: geofence.Coordinate{Lat: payload.Lat, Lng: payload.Lng},
		AccuracyM:  payload.AccuracyM,
		CapturedAt: time.Now(),
	})

	return c.Status(fiber.StatusOK).JSON(service.Project(status, verdict))
}

// MyStatus returns the caller's status projection plus the site geofence, so
// the employee page can render distance against the right origin.
func (h *AttendanceHandler) MyStatus(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	status, err := h.repo.GetStatus(ctx, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load attendance status"})
	}

	gf := h.svc.Geofence()
	resp := fiber.Map{
		"site": fiber.Map{
			"lat":            gf.Origin.Lat,
			"lng":            gf.Origin.Lng,
			"max_distance_m": gf.MaxDistanceM,
			"max_accuracy_m": gf.MaxAccuracyM,
		},
	}
	if status != nil {
		resp["last_event_type"] = status.LastEventType
		resp["bound_device_id"] = status.BoundDeviceID
		resp["last_updated_at"] = status.LastUpdatedAt
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AttendanceHandler) MyHistory(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	history, err := h.repo.FindEventsByUserID(ctx, claims.UserID, 100)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load attendance history"})
	}

	return c.Status(fiber.StatusOK).JSON(history)
}

// RebindDevice redeems an admin-issued one-time token from the employee's
// replacement device, swapping the binding to the submitted device id.
func (h *AttendanceHandler) RebindDevice(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	var payload models.DeviceRebindPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	if errors := util.ValidateStruct(payload); errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errors})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.RedeemRebindToken(ctx, claims.UserID, payload.Token, payload.DeviceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to redeem rebind token"})
	}
	if user == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rebind token is invalid or expired."})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Device rebound successfully",
		"device_id": payload.DeviceID,
	})
}
