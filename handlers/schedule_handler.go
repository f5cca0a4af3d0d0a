package handlers

import (
	"errors"
	"time"

	"github.com/ovationhq/arts_academy/database"
	"github.com/ovationhq/arts_academy/models"
	"github.com/ovationhq/arts_academy/services"
	"github.com/ovationhq/arts_academy/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func scheduleStore() *database.GormScheduleStore {
	return database.NewScheduleStore(database.DB, nil)
}

// buildCalendar reconstructs the caller's calendar screen from the query:
// granularity (day/week/month) and anchor date. The event cache is refreshed
// from the store before any interaction is handled.
func buildCalendar(c *fiber.Ctx) (*services.CalendarController, error) {
	controller := services.NewCalendarController(scheduleStore(), nil)

	if anchor := c.Query("anchor"); anchor != "" {
		t, err := time.Parse(services.DateLayout, anchor)
		if err != nil {
			return nil, errors.New("anchor must be formatted as 2006-01-02")
		}
		controller.View.SetAnchor(t)
	}
	if granularity := c.Query("granularity"); granularity != "" {
		if err := controller.View.SetGranularity(services.Granularity(granularity)); err != nil {
			return nil, err
		}
	}

	if err := controller.Refresh(c.Context()); err != nil {
		return nil, err
	}
	return controller, nil
}

// GetCalendarEvents returns the events visible in the requested window,
// along with any session records that could not be projected.
func GetCalendarEvents(c *fiber.Ctx) error {
	controller, err := buildCalendar(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer controller.Close()

	windowStart, windowEnd := controller.View.Window()
	return c.JSON(fiber.Map{
		"window_start": windowStart,
		"window_end":   windowEnd,
		"granularity":  controller.View.Granularity,
		"events":       controller.VisibleEvents(),
		"skipped":      controller.Skipped(),
	})
}

type MoveSessionRequest struct {
	NewStartDate string `json:"new_start_date" validate:"required,datetime=2006-01-02"`
	NewStartTime string `json:"new_start_time" validate:"required,datetime=15:04"`
}

// MoveSession handles a drag-and-drop of a calendar event onto a new slot.
func MoveSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req MoveSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var session models.ClassSession
	if err := database.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class session not found"})
	}
	if currentUserRole(c) != "admin" && !session.AssignedTo(currentUserID(c)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not teach this class"})
	}

	controller, err := buildCalendar(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	defer controller.Close()

	if err := controller.DropEvent(c.Context(), sessionID, req.NewStartDate, req.NewStartTime); err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotMovable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrSessionNotDisplayed):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, database.ErrSlotInPast), errors.Is(err, database.ErrInstructorBusy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reschedule the class"})
		}
	}

	websocket.NotifyScheduleChange(sessionID, "rescheduled")

	return c.JSON(fiber.Map{"message": "Class rescheduled successfully."})
}
