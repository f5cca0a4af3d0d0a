package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func ResourceRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	resources := api.Group("/courses/:courseId/resources", middleware.Protected())
	resources.Get("", handlers.GetCourseResources)
	resources.Post("", middleware.StaffRequired(), handlers.UploadResource)

	api.Delete("/resources/:resourceId", middleware.Protected(), middleware.StaffRequired(), handlers.DeleteResource)
}
