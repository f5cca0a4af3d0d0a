package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func VacationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	vacations := api.Group("/vacations", middleware.Protected())
	vacations.Post("", middleware.InstructorRequired(), handlers.CreateVacationPeriod)
	vacations.Get("/me", middleware.InstructorRequired(), handlers.GetMyVacationPeriods)
	vacations.Get("/instructor/:instructorId", middleware.AdminRequired(), handlers.GetInstructorVacationPeriods)
	vacations.Delete("/:vacationId", middleware.StaffRequired(), handlers.DeleteVacationPeriod)

	vacations.Get("/:vacationId/impact", middleware.StaffRequired(), handlers.GetVacationImpact)
	vacations.Post("/:vacationId/impact/workflow", middleware.StaffRequired(), handlers.OpenImpactWorkflow)

	workflows := api.Group("/impact-workflows", middleware.Protected(), middleware.StaffRequired())
	workflows.Get("/:workflowId", handlers.GetImpactWorkflow)
	workflows.Post("/:workflowId/sessions/:sessionId/resolve", handlers.ResolveImpactedSession)
	workflows.Delete("/:workflowId", handlers.DismissImpactWorkflow)
}
