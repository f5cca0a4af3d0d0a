package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReportRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/reports/schedule/:instructorId", middleware.Protected(), middleware.StaffRequired(), handlers.GenerateWeeklyScheduleReport)
}
