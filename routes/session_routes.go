package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func SessionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	sessions := api.Group("/sessions", middleware.Protected())
	sessions.Get("", handlers.ListSessions)
	sessions.Get("/teaching", middleware.InstructorRequired(), handlers.GetMyTeachingSessions)
	sessions.Get("/enrolled", handlers.GetMyEnrolledSessions)
	sessions.Get("/:sessionId", handlers.GetSession)
	sessions.Post("", middleware.AdminRequired(), handlers.CreateSession)
	sessions.Post("/:sessionId/enroll", middleware.AdminRequired(), handlers.EnrollStudents)
	sessions.Post("/:sessionId/cancel", middleware.StaffRequired(), handlers.CancelSession)
}
