package routes

import (
	"github.com/avdonin/school_canteen/handlers"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/gofiber/fiber/v2"
)

func NotificationRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	notifications := api.Group("/notifications")
	notifications.Get("", handlers.ListNotifications)
	notifications.Get("/unread_count", handlers.UnreadNotificationsCount)
	notifications.Post("/:notificationId/read", handlers.MarkNotificationRead)
}
