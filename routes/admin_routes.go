package routes

import (
	"github.com/avdonin/school_canteen/handlers"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Post("/notifications", handlers.CreateNotification)
	admin.Post("/pricing", handlers.UpdatePricing)
	admin.Post("/purchase-requests/:requestId/review", handlers.ReviewPurchaseRequest)
	admin.Get("/statistics", handlers.GetStatistics)
	admin.Get("/attendance/today", handlers.AttendanceToday)
}
