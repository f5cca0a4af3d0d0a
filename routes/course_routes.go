package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public catalog.
	api.Get("/courses", handlers.ListCourses)
	api.Get("/courses/:courseId", handlers.GetCourse)
	api.Get("/categories", handlers.ListCourseCategories)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/courses", handlers.CreateCourse)
	admin.Put("/courses/:courseId", handlers.UpdateCourse)
	admin.Post("/categories", handlers.CreateCourseCategory)
	admin.Put("/categories/:categoryId", handlers.UpdateCourseCategory)
	admin.Delete("/categories/:categoryId", handlers.DeleteCourseCategory)
}
