package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", handlers.GetProfile)
	profile.Put("/me", handlers.UpdateProfile)
	profile.Get("/children", handlers.GetMyChildren)
}
