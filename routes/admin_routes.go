package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/users", handlers.GetAllUsers)
	admin.Patch("/users/:userId/status", handlers.ToggleUserStatus)
	admin.Post("/users/:userId/promote-instructor", handlers.PromoteToInstructor)
	admin.Post("/parents/:parentId/link-child", handlers.LinkChildToParent)
	admin.Get("/reports/transactions", handlers.GenerateTransactionReport)

	api.Get("/instructors", handlers.ListInstructors)
}
