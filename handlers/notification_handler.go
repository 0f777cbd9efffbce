package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

// audiencesForRole lists the notification audiences each role subscribes to,
// besides notes addressed to the user directly.
func audiencesForRole(role string) []string {
	switch role {
	case "student":
		return []string{"all", "student"}
	case "cook":
		return []string{"all", "cook", "staff"}
	case "admin":
		return []string{"all", "admin", "staff"}
	}
	return []string{"all"}
}

func notificationFeed(c *fiber.Ctx) *gorm.DB {
	userID := middleware.CurrentUserID(c)
	audiences := audiencesForRole(middleware.CurrentRole(c))

	return database.DB.Model(&models.Notification{}).
		Where("(audience IN ? AND recipient_id IS NULL) OR recipient_id = ?", audiences, userID)
}

type notificationView struct {
	models.Notification
	Read bool `json:"read"`
}

func ListNotifications(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var notes []models.Notification
	if err := notificationFeed(c).Order("created_at DESC").Limit(100).Find(&notes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load notifications"})
	}

	var reads []models.NotificationRead
	if err := database.DB.Where("user_id = ?", userID).Find(&reads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load notifications"})
	}
	readSet := make(map[uuid.UUID]struct{}, len(reads))
	for _, r := range reads {
		readSet[r.NotificationID] = struct{}{}
	}

	out := make([]notificationView, 0, len(notes))
	for _, n := range notes {
		_, read := readSet[n.ID]
		out = append(out, notificationView{Notification: n, Read: read})
	}
	return c.JSON(out)
}

func UnreadNotificationsCount(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var count int64
	err := notificationFeed(c).
		Where("id NOT IN (?)", database.DB.
			Model(&models.NotificationRead{}).
			Select("notification_id").
			Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count notifications"})
	}
	return c.JSON(fiber.Map{"unread": count})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	noteID, err := uuid.Parse(c.Params("notificationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	var count int64
	if err := notificationFeed(c).Where("id = ?", noteID).Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark notification"})
	}
	if count == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	read := models.NotificationRead{
		NotificationID: noteID,
		UserID:         middleware.CurrentUserID(c),
		ReadAt:         time.Now(),
	}
	if err := database.DB.Create(&read).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark notification"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

type CreateNotificationRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=255"`
	Message     string     `json:"message" validate:"required"`
	Audience    string     `json:"audience" validate:"required,oneof=all student cook admin staff"`
	RecipientID *uuid.UUID `json:"recipient_id"`
}

func CreateNotification(c *fiber.Ctx) error {
	var req CreateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	creatorID := middleware.CurrentUserID(c)
	note := models.Notification{
		Title:       req.Title,
		Message:     req.Message,
		Audience:    req.Audience,
		RecipientID: req.RecipientID,
		CreatedBy:   &creatorID,
	}
	if err := database.DB.Create(&note).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create notification"})
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}
