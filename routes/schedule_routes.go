package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func ScheduleRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	calendar := api.Group("/calendar", middleware.Protected())
	calendar.Get("/events", handlers.GetCalendarEvents)
	calendar.Post("/events/:sessionId/move", middleware.StaffRequired(), handlers.MoveSession)
}
