package handlers

import (
	"time"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GenerateWeeklyScheduleReport builds a PDF of an instructor's week and
// returns its download URL. Admins can request any instructor's report,
// instructors only their own.
func GenerateWeeklyScheduleReport(c *fiber.Ctx) error {
	instructorID, err := uuid.Parse(c.Params("instructorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid instructor id"})
	}
	if currentUserRole(c) != "admin" && instructorID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only generate your own schedule report"})
	}

	var instructor models.User
	if err := database.DB.First(&instructor, "id = ? AND role = ?", instructorID, "instructor").Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Instructor not found"})
	}

	weekStart := time.Now().UTC().Truncate(24 * time.Hour)
	if anchor := c.Query("week_start"); anchor != "" {
		weekStart, err = time.Parse(services.DateLayout, anchor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week_start must be formatted as 2006-01-02"})
		}
	}
	// Snap back to Monday so the report always covers a full week.
	for weekStart.Weekday() != time.Monday {
		weekStart = weekStart.AddDate(0, 0, -1)
	}

	sessions, err := scheduleStore().ListSessions(c.Context(), services.SessionFilter{
		InstructorID: &instructorID,
		FromDate:     weekStart.Format(services.DateLayout),
		ToDate:       weekStart.AddDate(0, 0, 6).Format(services.DateLayout),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	reportURL, err := services.GenerateScheduleReport(instructor, weekStart, sessions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate schedule report"})
	}

	return c.JSON(fiber.Map{
		"report_url": reportURL,
		"week_start": weekStart.Format(services.DateLayout),
	})
}
