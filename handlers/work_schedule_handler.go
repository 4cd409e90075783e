package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teambition/rrule-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Grinders-Attendance-Backend/models"
	util "Grinders-Attendance-Backend/pkg/utils"
	"Grinders-Attendance-Backend/repository"
)

const dayLayout = "2006-01-02"

type WorkScheduleHandler struct {
	workScheduleRepo *repository.WorkScheduleRepository
}

func NewWorkScheduleHandler(repo *repository.WorkScheduleRepository) *WorkScheduleHandler {
	return &WorkScheduleHandler{
		workScheduleRepo: repo,
	}
}

func (h *WorkScheduleHandler) CreateWorkSchedule(c *fiber.Ctx) error {
	var payload models.WorkScheduleCreatePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	if errors := util.ValidateStruct(payload); errors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errors})
	}

	userID, err := primitive.ObjectIDFromHex(payload.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if payload.RecurrenceRule != "" {
		if _, err := rrule.StrToROption(payload.RecurrenceRule); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid recurrence rule", "details": err.Error()})
		}
	}

	schedule := models.WorkSchedule{
		UserID:         userID,
		Date:           strings.TrimSpace(payload.Date),
		StartTime:      strings.TrimSpace(payload.StartTime),
		EndTime:        strings.TrimSpace(payload.EndTime),
		Note:           payload.Note,
		RecurrenceRule: payload.RecurrenceRule,
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	createdSchedule, err := h.workScheduleRepo.Create(ctx, &schedule)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save work schedule", "details": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Work schedule created", "data": createdSchedule})
}

// GetAllWorkSchedules expands every stored rule into concrete shift instances
// within [start_date, end_date]. Recurring rules are materialized with their
// RRULE; one-off rules pass through when they fall inside the window.
func (h *WorkScheduleHandler) GetAllWorkSchedules(c *fiber.Ctx) error {
	startDate, err := time.Parse(dayLayout, c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_date must be a date in the form 2006-01-02"})
	}
	endDate, err := time.Parse(dayLayout, c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must be a date in the form 2006-01-02"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date must not precede start_date"})
	}

	filter := bson.M{}
	if userIDHex := c.Query("user_id"); userIDHex != "" {
		userID, err := primitive.ObjectIDFromHex(userIDHex)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is not a valid id"})
		}
		filter["user_id"] = userID
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	scheduleRules, err := h.workScheduleRepo.FindAllWithFilter(ctx, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch schedule rules"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": expandSchedules(scheduleRules, startDate, endDate),
	})
}

// MySchedule returns the caller's shifts for today, so the employee page can
// show the current shift next to the attendance status.
func (h *WorkScheduleHandler) MySchedule(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(*models.Claims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated or session data corrupted"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	rules, err := h.workScheduleRepo.FindByUser(ctx, claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch schedule rules"})
	}

	today, _ := time.Parse(dayLayout, time.Now().UTC().Format(dayLayout))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"date": today.Format(dayLayout),
		"data": expandSchedules(rules, today, today),
	})
}

func (h *WorkScheduleHandler) DeleteWorkSchedule(c *fiber.Ctx) error {
	objectID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid schedule id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	if err := h.workScheduleRepo.DeleteByID(ctx, objectID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Work schedule not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete work schedule", "details": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Work schedule deleted"})
}

func expandSchedules(rules []models.WorkSchedule, startDate, endDate time.Time) []models.WorkSchedule {
	expanded := []models.WorkSchedule{}

	for _, rule := range rules {
		if rule.RecurrenceRule != "" {
			rOption, err := rrule.StrToROption(rule.RecurrenceRule)
			if err != nil {
				continue
			}

			ruleStartDate, err := time.Parse(dayLayout, rule.Date)
			if err != nil {
				continue
			}
			rOption.Dtstart = ruleStartDate

			rr, err := rrule.NewRRule(*rOption)
			if err != nil {
				continue
			}

			ruleSet := rrule.Set{}
			ruleSet.RRule(rr)

			for _, instance := range ruleSet.Between(startDate, endDate, true) {
				expanded = append(expanded, models.WorkSchedule{
					ID:             rule.ID,
					UserID:         rule.UserID,
					Date:           instance.Format(dayLayout),
					StartTime:      rule.StartTime,
					EndTime:        rule.EndTime,
					Note:           rule.Note,
					RecurrenceRule: rule.RecurrenceRule,
				})
			}
			continue
		}

		ruleDate, err := time.Parse(dayLayout, rule.Date)
		if err != nil {
			continue
		}
		if !ruleDate.Before(startDate) && !ruleDate.After(endDate) {
			expanded = append(expanded, rule)
		}
	}

	return expanded
}
