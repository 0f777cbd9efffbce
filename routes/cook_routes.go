package routes

import (
	"github.com/avdonin/school_canteen/handlers"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/gofiber/fiber/v2"
)

func CookRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	staff := api.Group("", middleware.StaffRequired())
	staff.Get("/students/search", handlers.SearchStudents)
	staff.Get("/products", handlers.ListProducts)
	staff.Get("/purchase-requests", handlers.ListPurchaseRequests)
	staff.Get("/claims/history", handlers.ClaimHistory)
	staff.Get("/stats/meals", handlers.MealStats)

	cook := api.Group("", middleware.CookRequired())
	cook.Post("/claims/issue", handlers.IssueMeal)
	cook.Post("/purchase-requests", handlers.CreatePurchaseRequest)

	dishes := cook.Group("/dishes")
	dishes.Get("", handlers.ListDishes)
	dishes.Post("", handlers.CreateDish)
	dishes.Post("/:dishId/availability", handlers.ToggleDishAvailability)
}
