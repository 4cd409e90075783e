package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"Grinders-Attendance-Backend/models"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dayLayout, s)
	require.NoError(t, err)
	return d
}

func TestExpandSchedulesWeeklyRule(t *testing.T) {
	userID := primitive.NewObjectID()
	rules := []models.WorkSchedule{
		{
			ID:             primitive.NewObjectID(),
			UserID:         userID,
			Date:           "2026-01-05", // a Monday
			StartTime:      "08:00",
			EndTime:        "16:00",
			RecurrenceRule: "FREQ=WEEKLY;BYDAY=MO,WE",
		},
	}

	got := expandSchedules(rules, mustDay(t, "2026-01-05"), mustDay(t, "2026-01-11"))

	require.Len(t, got, 2)
	assert.Equal(t, "2026-01-05", got[0].Date)
	assert.Equal(t, "2026-01-07", got[1].Date)
	for _, s := range got {
		assert.Equal(t, userID, s.UserID)
		assert.Equal(t, "08:00", s.StartTime)
		assert.Equal(t, "16:00", s.EndTime)
	}
}

func TestExpandSchedulesOneOffInsideWindow(t *testing.T) {
	rules := []models.WorkSchedule{
		{Date: "2026-01-06", StartTime: "09:00", EndTime: "17:00"},
	}

	got := expandSchedules(rules, mustDay(t, "2026-01-05"), mustDay(t, "2026-01-11"))

	require.Len(t, got, 1)
	assert.Equal(t, "2026-01-06", got[0].Date)
}

func TestExpandSchedulesOneOffOutsideWindow(t *testing.T) {
	rules := []models.WorkSchedule{
		{Date: "2026-02-01", StartTime: "09:00", EndTime: "17:00"},
	}

	got := expandSchedules(rules, mustDay(t, "2026-01-05"), mustDay(t, "2026-01-11"))

	assert.Empty(t, got)
}

func TestExpandSchedulesWindowBoundariesInclusive(t *testing.T) {
	rules := []models.WorkSchedule{
		{Date: "2026-01-05"},
		{Date: "2026-01-11"},
	}

	got := expandSchedules(rules, mustDay(t, "2026-01-05"), mustDay(t, "2026-01-11"))

	require.Len(t, got, 2)
}

func TestExpandSchedulesSkipsMalformedRules(t *testing.T) {
	rules := []models.WorkSchedule{
		{Date: "2026-01-05", RecurrenceRule: "NOT_A_RULE"},
		{Date: "not-a-date"},
		{Date: "2026-01-06"},
	}

	got := expandSchedules(rules, mustDay(t, "2026-01-05"), mustDay(t, "2026-01-11"))

	require.Len(t, got, 1)
	assert.Equal(t, "2026-01-06", got[0].Date)
}
