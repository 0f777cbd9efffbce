package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/avdonin/school_canteen/database"
	"github.com/avdonin/school_canteen/middleware"
	"github.com/avdonin/school_canteen/models"
)

func GetPreferences(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Select("preferences").First(&user, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"preferences": user.Preferences})
}

type UpdatePreferencesRequest struct {
	Preferences string `json:"preferences" validate:"max=2000"`
}

func UpdatePreferences(c *fiber.Ctx) error {
	var req UpdatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", middleware.CurrentUserID(c)).
		Update("preferences", req.Preferences).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update preferences"})
	}
	return c.JSON(fiber.Map{"preferences": req.Preferences})
}
