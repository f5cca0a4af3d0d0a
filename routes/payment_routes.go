package routes

import (
	"github.com/ovationhq/arts_academy/handlers"
	"github.com/ovationhq/arts_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", middleware.Protected())
	payments.Get("/me", handlers.GetMyPayments)
	payments.Post("/:paymentId/request-refund", handlers.RequestRefund)

	adminPayments := api.Group("/admin/payments", middleware.Protected(), middleware.AdminRequired())
	adminPayments.Get("", handlers.ListPayments)
	adminPayments.Post("", handlers.RecordPayment)
	adminPayments.Post("/:paymentId/review-refund", handlers.ReviewRefund)
}
