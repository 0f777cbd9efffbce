package routes

import (
	"github.com/avdonin/school_canteen/handlers"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Get("/menu", handlers.GetMenu)
	api.Get("/menu/calendar", handlers.GetMenuCalendar)
	api.Get("/pricing", handlers.GetPricing)

	student := api.Group("", middleware.StudentRequired())
	student.Get("/balance", handlers.GetBalance)
	student.Get("/subscriptions", handlers.GetSubscriptions)
	student.Post("/payments", handlers.CreatePayment)

	student.Get("/allergies", handlers.ListAllergies)
	student.Post("/allergies", handlers.AddAllergy)
	student.Delete("/allergies/:allergyId", handlers.DeleteAllergy)
	api.Get("/allergens", handlers.ListAllowedAllergens)

	student.Get("/preferences", handlers.GetPreferences)
	student.Post("/preferences", handlers.UpdatePreferences)

	api.Get("/reviews", handlers.ListReviews)
	student.Post("/reviews", handlers.CreateReview)

	student.Get("/claims/today", handlers.TodayClaims)
	student.Post("/claims/self", handlers.SelfClaim)
	student.Post("/claims/:claimId/confirm", handlers.ConfirmClaim)
}
